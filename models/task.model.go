package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task statuses and priorities
const (
	TaskPending    = "en_attente"
	TaskInProgress = "en_cours"
	TaskDone       = "terminee"

	PriorityLow    = "basse"
	PriorityMedium = "moyenne"
	PriorityHigh   = "haute"
)

// Task is a personal to-do item
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title       string             `bson:"titre" json:"titre" validate:"required"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      string             `bson:"statut" json:"statut" validate:"oneof=en_attente en_cours terminee"`
	Priority    string             `bson:"priorite" json:"priorite" validate:"oneof=basse moyenne haute"`
	Owner       primitive.ObjectID `bson:"utilisateur" json:"utilisateur"`
	DueDate     *time.Time         `bson:"dateEcheance,omitempty" json:"dateEcheance,omitempty"`
	CreatedAt   time.Time          `bson:"dateCreation" json:"dateCreation"`
	UpdatedAt   time.Time          `bson:"dateModification" json:"dateModification"`
	Version     int64              `bson:"version" json:"-"`
}

// ApplyDefaults fills status and priority when unset
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = TaskPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// Touch stamps the modification time; call on every save
func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = now
}
