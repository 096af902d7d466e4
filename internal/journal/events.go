package journal

import "encoding/json"

// Event type names.
const (
	TypeRunStarted       = "RunStarted"
	TypeRepositorySynced = "RepositorySynced"
	TypeRepositoryFailed = "RepositoryNotReady"
	TypePolicyApplied    = "PolicyApplied"
	TypeRunCompleted     = "RunCompleted"
)

// RunStarted is recorded when a run begins.
type RunStarted struct {
	ConfigPath string   `json:"config_path"`
	Repos      []string `json:"repos"`
}

// RepositorySynced is recorded when a repository reaches origin/<branch>.
type RepositorySynced struct {
	Repo       string `json:"repo"`
	Branch     string `json:"branch"`
	Commit     string `json:"commit"`
	Path       string `json:"path"`
	DurationMS int64  `json:"duration_ms"`
}

// RepositoryNotReady is recorded when a repository could not be synchronized.
type RepositoryNotReady struct {
	Repo     string `json:"repo"`
	Reason   string `json:"reason"`
	Category string `json:"category,omitempty"`
}

// PolicyApplied is recorded once the network policy has been persisted.
type PolicyApplied struct {
	Mode         string   `json:"mode"`
	AllowedSites []string `json:"allowed_sites"`
}

// RunCompleted is recorded at the end of a run.
type RunCompleted struct {
	Ready      bool  `json:"ready"`
	DurationMS int64 `json:"duration_ms"`
}

func eventType(v any) string {
	switch v.(type) {
	case RunStarted:
		return TypeRunStarted
	case RepositorySynced:
		return TypeRepositorySynced
	case RepositoryNotReady:
		return TypeRepositoryFailed
	case PolicyApplied:
		return TypePolicyApplied
	case RunCompleted:
		return TypeRunCompleted
	default:
		return ""
	}
}

// Decode unmarshals the payload of e into the typed event it carries.
func Decode(e Event) (any, error) {
	var v any
	switch e.Type() {
	case TypeRunStarted:
		v = &RunStarted{}
	case TypeRepositorySynced:
		v = &RepositorySynced{}
	case TypeRepositoryFailed:
		v = &RepositoryNotReady{}
	case TypePolicyApplied:
		v = &PolicyApplied{}
	case TypeRunCompleted:
		v = &RunCompleted{}
	default:
		return nil, ErrUnknownEvent
	}
	if err := json.Unmarshal(e.Payload(), v); err != nil {
		return nil, err
	}
	return v, nil
}
