package dto

type SubmitFeedbackRequest struct {
	Rating       int    `json:"rating"`
	FeedbackText string `json:"feedback_text"`
}

type FeedbackResponse struct {
	ID           string `json:"id,omitempty"`
	TaskID       string `json:"task_id"`
	Rating       int    `json:"rating"`
	FeedbackText string `json:"feedback_text,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}
