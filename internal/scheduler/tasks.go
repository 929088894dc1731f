package scheduler

import (
	"encoding/json"

	"agency_crm_backend/internal/notification"

	"github.com/hibiken/asynq"
)

const TaskDeliverNotification = "notification.deliver"

func NewDeliverNotificationTask(d notification.Delivery) (*asynq.Task, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeliverNotification, data), nil
}

func ParseDeliverNotificationPayload(task *asynq.Task) (notification.Delivery, error) {
	var d notification.Delivery
	if err := json.Unmarshal(task.Payload(), &d); err != nil {
		return notification.Delivery{}, err
	}
	return d, nil
}
