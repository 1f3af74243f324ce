package intake

import (
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-field-mesh/internal/models"
)

// idIssuer hands out <prefix>-<unix millis> identifiers that strictly
// increase per kind, even when the clock stalls or steps backwards.
// It is only used from the single intake worker.
type idIssuer struct {
	last map[models.Kind]int64
}

func newIDIssuer() *idIssuer {
	return &idIssuer{last: make(map[models.Kind]int64)}
}

// observe raises the floor for kind to any numeric suffix found in id, so
// identifiers issued after a restart never collide with stored ones.
func (g *idIssuer) observe(kind models.Kind, id string) {
	suffix, ok := strings.CutPrefix(id, kind.IDPrefix()+"-")
	if !ok {
		return
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return
	}
	if n > g.last[kind] {
		g.last[kind] = n
	}
}

func (g *idIssuer) next(kind models.Kind, now time.Time) string {
	n := now.UnixMilli()
	if n <= g.last[kind] {
		n = g.last[kind] + 1
	}
	g.last[kind] = n
	return kind.IDPrefix() + "-" + strconv.FormatInt(n, 10)
}
