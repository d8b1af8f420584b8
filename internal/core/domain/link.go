package domain

// Link is a hypermedia descriptor of an action available on a resource.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
	Action string `json:"action,omitempty"`
}
