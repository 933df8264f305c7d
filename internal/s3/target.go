package s3

import (
	"fmt"
	"strings"
)

// Target is one bucket/prefix pair named on the command line.
// The prefix is matched as an exact string prefix by the store; no
// path-separator semantics are assumed or added anywhere downstream.
type Target struct {
	Bucket string
	Prefix string
}

func ParseTarget(raw string) (Target, error) {
	s := strings.TrimSpace(raw)
	if low := strings.ToLower(s); strings.HasPrefix(low, "s3://") {
		s = s[len("s3://"):]
	}
	if s == "" {
		return Target{}, fmt.Errorf("target %q: empty bucket url", raw)
	}
	bucket, prefix, _ := strings.Cut(s, "/")
	if bucket == "" {
		return Target{}, fmt.Errorf("target %q: missing bucket name", raw)
	}
	if strings.ContainsAny(bucket, " \t") {
		return Target{}, fmt.Errorf("target %q: bucket name contains whitespace", raw)
	}
	return Target{
		Bucket: bucket,
		Prefix: strings.Trim(prefix, "/"),
	}, nil
}

// ParseTargets splits a comma-separated list of bucket urls.
func ParseTargets(raw string) ([]Target, error) {
	parts := strings.Split(raw, ",")
	targets := make([]Target, 0, len(parts))
	for _, p := range parts {
		t, err := ParseTarget(p)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func (t Target) String() string {
	return fmt.Sprintf("s3://%s/%s", t.Bucket, t.Prefix)
}
