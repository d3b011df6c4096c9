package model

import "time"

type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link,omitempty"`
}

// GeneratedProfile is the AI-written portfolio. A valid one always has a
// non-empty skill list and at least one project.
type GeneratedProfile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Bio         string    `json:"bio"`
	Skills      []string  `json:"skills"`
	Projects    []Project `json:"projects"`
	GitHubURL   string    `json:"githubUrl,omitempty"`
	LinkedInURL string    `json:"linkedinUrl,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// GenerateInput is what the caller supplies to full profile generation.
type GenerateInput struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	RawText     string `json:"rawText"`
	LinkedInURL string `json:"linkedinUrl,omitempty"`
	GitHubURL   string `json:"githubUrl,omitempty"`
}
