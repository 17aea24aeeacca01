package models

import "time"

// Settings are the persisted assistant prompts editable from the admin
// surface.
type Settings struct {
	SystemPromptInstructor string    `json:"systemPromptInstructor" bson:"system_prompt_instructor"`
	SystemPromptClassmate  string    `json:"systemPromptClassmate" bson:"system_prompt_classmate"`
	UpdatedAt              time.Time `json:"updatedAt,omitempty" bson:"updated_at,omitempty"`
	UpdatedBy              string    `json:"updatedBy,omitempty" bson:"updated_by,omitempty"`
}

// DefaultSettings returns the prompts used before anything is saved.
func DefaultSettings() *Settings {
	return &Settings{
		SystemPromptInstructor: "You are Instructor Alex, an AI instructor. Reply to the student in under 50 words.",
		SystemPromptClassmate:  "You are a classmate in an online class. Reply to the student in under 30 words.",
	}
}
