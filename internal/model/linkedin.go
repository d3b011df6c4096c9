package model

// RawSourceLimit is how many characters of the pasted LinkedIn text are kept
// on the parsed profile for later auditing.
const RawSourceLimit = 10000

type Education struct {
	Institution  string  `json:"institution"`
	Degree       *string `json:"degree"`
	FieldOfStudy *string `json:"fieldOfStudy"`
	StartYear    *int    `json:"startYear"`
	EndYear      *int    `json:"endYear"`
}

type Post struct {
	Title          *string `json:"title"`
	ContentSnippet string  `json:"contentSnippet"`
	URL            *string `json:"url"`
	CreatedAt      *string `json:"createdAt"`
}

type RawSource struct {
	Text string `json:"text"`
}

// LinkedInProfile is extracted from pasted profile text by the AI model.
// Every field absent from the source text stays nil.
type LinkedInProfile struct {
	URL            string      `json:"url"`
	Name           *string     `json:"name"`
	Headline       *string     `json:"headline"`
	CurrentRole    *string     `json:"currentRole"`
	CurrentCompany *string     `json:"currentCompany"`
	Location       *string     `json:"location"`
	Education      []Education `json:"education"`
	Skills         []string    `json:"skills"`
	Posts          []Post      `json:"posts"`
	RawSource      *RawSource  `json:"rawSource,omitempty"`
}
