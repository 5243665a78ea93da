package util

import "strings"

func RemoveDuplicateStrings(strings []string, ignoreList []string) []string {
	presentStrings := make(map[string]bool)
	var list []string

	for _, ignoreString := range ignoreList {
		presentStrings[ignoreString] = true
	}

	for _, item := range strings {
		if _, value := presentStrings[item]; !value && item != "" {
			presentStrings[item] = true
			list = append(list, item)
		}
	}
	return list
}

// SplitList splits a delimited field, trimming and dropping empty or repeated items.
func SplitList(s string, separator string) []string {
	items := strings.Split(s, separator)
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}

	list := RemoveDuplicateStrings(items, nil)
	if list == nil {
		return []string{}
	}
	return list
}
