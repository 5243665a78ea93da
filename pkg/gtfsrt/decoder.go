package gtfsrt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/subpar/subpar/pkg/transit"
	"google.golang.org/protobuf/proto"
)

// Decode unmarshals a GTFS-realtime FeedMessage and converts every entity on its own,
// so one bad entity does not spoil the rest of the batch.
func Decode(body []byte) (*transit.Batch, error) {
	feed := gtfs.FeedMessage{}
	// required fields are checked per entity below
	if err := (proto.UnmarshalOptions{AllowPartial: true}).Unmarshal(body, &feed); err != nil {
		return nil, transit.NewError(transit.Decode, err)
	}

	return DecodeMessage(&feed)
}

func DecodeMessage(feed *gtfs.FeedMessage) (*transit.Batch, error) {
	header := feed.GetHeader()
	if header == nil {
		return nil, transit.Missing("header")
	}
	if header.Timestamp == nil {
		return nil, transit.Missing("header.timestamp")
	}

	batch := &transit.Batch{
		Timestamp: time.Unix(int64(header.GetTimestamp()), 0).UTC(),
		Updates:   make([]transit.EntityResult, 0, len(feed.Entity)),
	}

	for index, entity := range feed.Entity {
		update, err := DecodeEntity(entity)
		if err != nil {
			var decodeErr *transit.Error
			if errors.As(err, &decodeErr) {
				decodeErr.WithEntity(index)
			}
		}
		batch.Updates = append(batch.Updates, transit.EntityResult{Update: update, Err: err})
	}

	return batch, nil
}

// DecodeEntity requires exactly one of trip_update, vehicle and alert to be set.
func DecodeEntity(entity *gtfs.FeedEntity) (transit.Update, error) {
	var markers []string
	if entity.TripUpdate != nil {
		markers = append(markers, "trip_update")
	}
	if entity.Vehicle != nil {
		markers = append(markers, "vehicle")
	}
	if entity.Alert != nil {
		markers = append(markers, "alert")
	}

	switch len(markers) {
	case 0:
		return transit.Update{}, transit.NewError(transit.Decode, errors.New("entity has no trip_update, vehicle or alert"))
	case 1:
	default:
		return transit.Update{}, transit.NewError(transit.Decode, fmt.Errorf("entity sets more than one kind: %s", strings.Join(markers, ", ")))
	}

	switch {
	case entity.TripUpdate != nil:
		schedule, err := DecodeSchedule(entity.TripUpdate)
		if err != nil {
			return transit.Update{}, err
		}
		return transit.NewScheduleUpdate(*schedule), nil
	case entity.Vehicle != nil:
		position, err := DecodePosition(entity.Vehicle)
		if err != nil {
			return transit.Update{}, err
		}
		return transit.NewPositionUpdate(*position), nil
	default:
		return transit.NewAlertUpdate(), nil
	}
}

func decodeTrip(trip *gtfs.TripDescriptor) (transit.TripId, error) {
	if trip == nil {
		return transit.TripId{}, transit.Missing("trip")
	}
	if trip.TripId == nil {
		return transit.TripId{}, transit.Missing("trip.trip_id")
	}
	if trip.StartDate == nil {
		return transit.TripId{}, transit.Missing("trip.start_date").WithTrip(trip.GetTripId())
	}

	day, err := transit.ParseDate(trip.GetStartDate())
	if err != nil {
		return transit.TripId{}, transit.NewError(transit.Decode, err).WithField("trip.start_date").WithTrip(trip.GetTripId())
	}

	id, err := transit.ParseTripId(trip.GetTripId(), day)
	if err != nil {
		return transit.TripId{}, transit.NewError(transit.Decode, err).WithField("trip.trip_id").WithTrip(trip.GetTripId())
	}

	return id, nil
}

func DecodePosition(vehicle *gtfs.VehiclePosition) (*transit.Position, error) {
	trip, err := decodeTrip(vehicle.Trip)
	if err != nil {
		return nil, err
	}

	if vehicle.StopId == nil {
		return nil, transit.Missing("vehicle.stop_id").WithTrip(trip.Text)
	}
	if vehicle.Timestamp == nil {
		return nil, transit.Missing("vehicle.timestamp").WithTrip(trip.Text)
	}

	position := &transit.Position{
		Trip:     trip,
		Observed: time.Unix(int64(vehicle.GetTimestamp()), 0).UTC(),
		Stop:     transit.StopId(vehicle.GetStopId()),
		Status:   decodeStatus(vehicle.CurrentStatus),
	}
	if vehicle.CurrentStopSequence != nil {
		sequence := vehicle.GetCurrentStopSequence()
		position.Sequence = &sequence
	}

	return position, nil
}

func decodeStatus(status *gtfs.VehiclePosition_VehicleStopStatus) transit.PositionStatus {
	if status == nil {
		return transit.Nothing
	}

	switch *status {
	case gtfs.VehiclePosition_STOPPED_AT:
		return transit.At
	case gtfs.VehiclePosition_INCOMING_AT:
		return transit.Near
	case gtfs.VehiclePosition_IN_TRANSIT_TO:
		return transit.EnRoute
	}

	return transit.Nothing
}

// DecodeSchedule fails as a whole if any of its stop time updates is invalid.
func DecodeSchedule(update *gtfs.TripUpdate) (*transit.Schedule, error) {
	trip, err := decodeTrip(update.Trip)
	if err != nil {
		return nil, err
	}

	stops := make([]transit.StopPlan, 0, len(update.StopTimeUpdate))
	for index, stopTimeUpdate := range update.StopTimeUpdate {
		plan, err := decodeStopPlan(stopTimeUpdate)
		if err != nil {
			return nil, &transit.Error{
				Kind:   transit.ScheduleDecode,
				Entity: -1,
				Field:  fmt.Sprintf("stop_time_update[%d]", index),
				Trip:   trip.Text,
				Err:    err,
			}
		}
		stops = append(stops, plan)
	}

	// The feed carries no per-trip generation time; the batch header is authoritative.
	return &transit.Schedule{
		Trip:  trip,
		AsOf:  time.Unix(0, 0).UTC(),
		Stops: stops,
	}, nil
}

func decodeStopPlan(update *gtfs.TripUpdate_StopTimeUpdate) (transit.StopPlan, error) {
	if update.StopId == nil {
		return transit.StopPlan{}, transit.Missing("stop_id")
	}

	arrival, err := decodeEvent(update.Arrival, "arrival.time")
	if err != nil {
		return transit.StopPlan{}, err
	}
	departure, err := decodeEvent(update.Departure, "departure.time")
	if err != nil {
		return transit.StopPlan{}, err
	}

	times, err := transit.NewTimes(arrival, departure)
	if err != nil {
		return transit.StopPlan{}, transit.NewError(transit.Decode, err).WithField("arrival/departure")
	}

	return transit.StopPlan{
		Stop:  transit.StopId(update.GetStopId()),
		Times: times,
	}, nil
}

func decodeEvent(event *gtfs.TripUpdate_StopTimeEvent, field string) (*time.Time, error) {
	if event == nil {
		return nil, nil
	}
	if event.Time == nil {
		return nil, transit.Missing(field)
	}

	t := time.Unix(event.GetTime(), 0).UTC()
	return &t, nil
}
