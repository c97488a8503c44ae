package origins

import "fmt"

// MetadataPolicy decides what happens when a localized name query fails
// for one origin.
type MetadataPolicy string

const (
	// PolicyOmitOrigin keys names by origin and leaves out any origin
	// missing one of its names. The remaining records stay aligned with
	// their own binding info.
	PolicyOmitOrigin MetadataPolicy = "omit_origin"

	// PolicyFailCall fails the whole resolution with
	// ErrCodeMetadataIncomplete on the first failed name query.
	PolicyFailCall MetadataPolicy = "fail_call"

	// PolicyPositional keeps three positional name lists and drops failed
	// entries from each. Any resulting length mismatch fails the call with
	// ErrCodeMisaligned.
	PolicyPositional MetadataPolicy = "positional"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicyOmitOrigin

// ParsePolicy validates a policy name. An empty name selects DefaultPolicy.
func ParsePolicy(s string) (MetadataPolicy, error) {
	switch p := MetadataPolicy(s); p {
	case "":
		return DefaultPolicy, nil
	case PolicyOmitOrigin, PolicyFailCall, PolicyPositional:
		return p, nil
	default:
		return "", fmt.Errorf("unknown metadata policy %q (want %s, %s or %s)",
			s, PolicyOmitOrigin, PolicyFailCall, PolicyPositional)
	}
}
