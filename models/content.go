package models

type Law struct {
	ID      string   `json:"id"`
	Code    string   `json:"code"`
	Title   string   `json:"title"`
	Summary string   `json:"summary,omitempty"`
	Text    string   `json:"text,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

type Course struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	ScenarioIDs []string `json:"scenario_ids"`
	LawIDs      []string `json:"law_ids,omitempty"`
}
