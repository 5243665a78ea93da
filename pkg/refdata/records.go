package refdata

import "time"

type EquipmentID string

type EquipmentType string

const (
	Elevator  EquipmentType = "EL"
	Escalator EquipmentType = "ES"
)

// AccessEquipment is an entry in the NYCT elevator and escalator directory.
type AccessEquipment struct {
	Station          string        `json:"station" groups:"basic,detailed"`
	Trains           TrainList     `json:"trainno" groups:"detailed"`
	EquipmentID      EquipmentID   `json:"equipmentno" groups:"basic,detailed"`
	EquipmentType    EquipmentType `json:"equipmenttype" groups:"basic,detailed"`
	Serving          string        `json:"serving" groups:"basic,detailed"`
	ADA              YesNo         `json:"ADA" groups:"basic,detailed"`
	Active           YesNo         `json:"isactive" groups:"detailed"`
	NonNYCT          YesNo         `json:"nonNYCT" groups:"detailed"`
	ShortDescription string        `json:"shortdescription" groups:"basic,detailed"`
	LinesServed      TrainList     `json:"linesservedbyelevator" groups:"detailed"`
	StopIDs          SlashList     `json:"elevatorsgtfsstopid" groups:"detailed"`
	MRN              string        `json:"elevatormrn" groups:"detailed"`
	ComplexID        ComplexID     `json:"stationcomplexid" groups:"detailed"`
	NextADANorth     string        `json:"nextadanorth" groups:"detailed"`
	NextADASouth     string        `json:"nextadasouth" groups:"detailed"`
	Redundant        QuotedInt     `json:"redundant" groups:"detailed"`
	BusConnections   string        `json:"busconnections" groups:"detailed"`
	AlternativeRoute string        `json:"alternativeroute" groups:"detailed"`
}

// AccessOutage is a current or upcoming outage of a piece of equipment.
type AccessOutage struct {
	Station         string        `json:"station" groups:"basic,detailed"`
	Trains          TrainList     `json:"trainno" groups:"detailed"`
	EquipmentID     EquipmentID   `json:"equipment" groups:"basic,detailed"`
	EquipmentType   EquipmentType `json:"equipmenttype" groups:"detailed"`
	Serving         string        `json:"serving" groups:"detailed"`
	ADA             YesNo         `json:"ADA" groups:"basic,detailed"`
	OutageDate      OutageTime    `json:"outagedate" groups:"basic,detailed"`
	EstimatedReturn OutageTime    `json:"estimatedreturntoservice" groups:"basic,detailed"`
	Reason          string        `json:"reason" groups:"basic,detailed"`
	Upcoming        YesNo         `json:"isupcomingoutage" groups:"basic,detailed"`
	Maintenance     YesNo         `json:"ismaintenanceoutage" groups:"basic,detailed"`
	AsOf            time.Time     `json:"asof" groups:"detailed"`
}

// ComplexInfo is a row of the station complex directory.
type ComplexInfo struct {
	ComplexID               ComplexID     `json:"complex_id"`
	IsComplex               YesNo         `json:"is_complex"`
	StationCount            string        `json:"number_of_stations_in_complex"`
	StopName                string        `json:"stop_name"`
	DisplayName             string        `json:"display_name"`
	ConstituentStationNames string        `json:"constituent_station_names"`
	StopIDs                 SemicolonList `json:"gtfs_stop_ids"`
	Borough                 string        `json:"borough"`
	CBD                     YesNo         `json:"cbd"`
	Routes                  SpaceList     `json:"daytime_routes"`
	StructureType           string        `json:"structure_type"`
	Latitude                QuotedFloat   `json:"latitude"`
	Longitude               QuotedFloat   `json:"longitude"`
	ADA                     AdaStatus     `json:"ada"`
	ADANotes                *string       `json:"ada_notes,omitempty"`
}

// SubwayEntrance is a street entrance belonging to a complex.
type SubwayEntrance struct {
	Division               string      `json:"division"`
	Line                   string      `json:"line"`
	Borough                string      `json:"borough"`
	StopName               string      `json:"stop_name"`
	ComplexID              ComplexID   `json:"complex_id"`
	ConstituentStationName string      `json:"constituent_station_name"`
	StationID              string      `json:"station_id"`
	StopIDs                SpaceList   `json:"gtfs_stop_id"`
	Routes                 SpaceList   `json:"daytime_routes"`
	EntranceType           string      `json:"entrance_type"`
	EntryAllowed           YesNo       `json:"entry_allowed"`
	ExitAllowed            YesNo       `json:"exit_allowed"`
	Latitude               QuotedFloat `json:"entrance_latitude"`
	Longitude              QuotedFloat `json:"entrance_longitude"`
}
