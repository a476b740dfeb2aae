package game

import "fmt"

// Every failure returned by the domain wraps exactly one of these
// sentinels so callers can map it to a transport category without parsing
// messages.
var (
	InvalidArgumentErr = fmt.Errorf("invalid argument")
	ConflictErr        = fmt.Errorf("conflict")
	NotFoundErr        = fmt.Errorf("not found")
)
