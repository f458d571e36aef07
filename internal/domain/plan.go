package domain

// PlanPayload is what the chat endpoints return. TrainingPlan is nil when the
// model reply could not be read as structured data.
type PlanPayload struct {
	Response     string        `json:"response"`
	TrainingPlan *TrainingPlan `json:"trainingPlan"`
}

// TrainingPlan is a weekly plan as produced by the model. A nil slice or nil
// string pointer means the matching document region is left as it is; an
// empty slice clears the region.
type TrainingPlan struct {
	Title      *string         `json:"title,omitempty"`
	Subtitle   *string         `json:"subtitle,omitempty"`
	Schedule   []ScheduleEntry `json:"schedule"`
	Tips       []string        `json:"tips"`
	Strategies []Strategy      `json:"strategies"`
}

// ScheduleEntry is one day of training.
type ScheduleEntry struct {
	Day      string `json:"day"`
	Content  string `json:"content"`
	Duration string `json:"duration"`
	Notes    string `json:"notes"`
}

type Strategy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
