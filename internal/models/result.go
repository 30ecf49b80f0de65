package models

type UploadResponse struct {
	ID                  string   `json:"id"`
	DocumentID          string   `json:"document_id"`
	RoleID              string   `json:"role_id"`
	ScoreWithoutChatGPT float64  `json:"score_without_chatgpt"`
	ScoreWithChatGPT    float64  `json:"score_with_chatgpt"`
	Summary             string   `json:"summary"`
	MatchedSkills       []string `json:"matched_skills"`
	MissingSkills       []string `json:"missing_skills"`
	Degraded            bool     `json:"degraded"`
}

type DocumentResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	MediaType    string `json:"media_type"`
	Size         int64  `json:"size"`
}

type EvaluateRequest struct {
	DocumentID string `json:"document_id" validate:"required,uuid"`
	RoleID     string `json:"role_id" validate:"required"`
}

type EvaluateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ResultResponse struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	RoleID       string          `json:"role_id"`
	Result       *EvaluationData `json:"result,omitempty"`
	ErrorKind    *string         `json:"error_kind,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

type EvaluationData struct {
	ScoreWithoutChatGPT float64  `json:"score_without_chatgpt"`
	ScoreWithChatGPT    float64  `json:"score_with_chatgpt"`
	Summary             string   `json:"summary"`
	MatchedSkills       []string `json:"matched_skills"`
	MissingSkills       []string `json:"missing_skills"`
	Degraded            bool     `json:"degraded"`
}
