package interfaces

import (
	"context"
	"errors"
	"log"

	"machinehealth-cloud/internal/activities/application"
	"machinehealth-cloud/internal/activities/application/events"
	activities "machinehealth-cloud/internal/activities/domain"
	"machinehealth-cloud/internal/eventing"
	"machinehealth-cloud/internal/eventing/eventbus"
	status "machinehealth-cloud/internal/status/domain"
)

const conditionConsumerName = "activities.condition_detected"

// RegisterConditionConsumer subscribes the tracker to abnormality events.
// The processed store keeps redelivered events from double-counting
// occurrences.
func RegisterConditionConsumer(bus eventbus.EventBus, tracker *application.Tracker, store eventing.ProcessedStore, logger *log.Logger) error {
	if bus == nil {
		return errors.New("activities consumer: nil bus")
	}
	if tracker == nil {
		return errors.New("activities consumer: nil tracker")
	}
	if logger == nil {
		logger = log.Default()
	}

	handler := func(ctx context.Context, event any) error {
		detected, ok := event.(events.ConditionDetected)
		if !ok {
			if ptr, isPtr := event.(*events.ConditionDetected); isPtr && ptr != nil {
				detected = *ptr
			} else {
				logger.Printf("activities: unexpected event payload %T", event)
				return nil
			}
		}
		err := tracker.Record(ctx, activities.Occurrence{
			MachineParameterID: detected.MachineParameterID,
			ParameterName:      detected.ParameterName,
			Condition:          status.Condition(detected.Condition),
			Value:              detected.Value,
			ObservedAt:         detected.ObservedAt,
		})
		if err != nil {
			logger.Printf("activities: record %s/%s failed: %v", detected.MachineName, detected.ParameterName, err)
		}
		return err
	}

	eventing.Subscribe(bus, eventbus.EventTypeOf[events.ConditionDetected](), conditionConsumerName, handler, store)
	return nil
}
