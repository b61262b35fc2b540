package settings

import "fmt"

type scopeKind int

const (
	scopeSite scopeKind = iota
	scopeNetwork
	scopeBlog
)

// Scope selects which table a document lives in.
type Scope struct {
	kind   scopeKind
	blogID int64
}

var (
	// Site is the single-site options table.
	Site = Scope{kind: scopeSite}
	// Network is the network-wide table of a multisite install.
	Network = Scope{kind: scopeNetwork}
)

// Blog is the options table of one blog in a multisite install.
func Blog(id int64) Scope {
	return Scope{kind: scopeBlog, blogID: id}
}

// BlogID returns the blog id for Blog scopes and 0 otherwise.
func (s Scope) BlogID() int64 {
	return s.blogID
}

func (s Scope) String() string {
	switch s.kind {
	case scopeSite:
		return "site"
	case scopeNetwork:
		return "network"
	case scopeBlog:
		return fmt.Sprintf("blog:%d", s.blogID)
	default:
		return "unknown"
	}
}
