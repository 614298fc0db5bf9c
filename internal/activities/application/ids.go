package application

import "github.com/google/uuid"

type randomIDs struct{}

func (randomIDs) NewID() string { return "activity-" + uuid.NewString() }
