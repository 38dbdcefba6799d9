package registration

import (
	"fmt"
	"time"

	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/pkg/form"
	gocache "github.com/patrickmn/go-cache"
)

// SchemaCache keeps compiled form schemas keyed by template slug and
// revision, so a template is compiled once per update.
type SchemaCache struct {
	c    *gocache.Cache
	opts form.Options
}

func NewSchemaCache(opts form.Options, ttl time.Duration) *SchemaCache {
	return &SchemaCache{c: gocache.New(ttl, 2*ttl), opts: opts}
}

// Get returns the compiled schema for t, compiling it on a miss.
func (sc *SchemaCache) Get(t *domain.RegistrationTemplate) (*form.Schema, error) {
	key := fmt.Sprintf("%s@%d", t.Slug, t.UpdatedAt.UnixNano())
	if v, ok := sc.c.Get(key); ok {
		return v.(*form.Schema), nil
	}
	s, err := form.Compile(t.Fields, sc.opts)
	if err != nil {
		return nil, err
	}
	sc.c.SetDefault(key, s)
	return s, nil
}

// Compile compiles fields without caching; used to reject bad templates on write.
func (sc *SchemaCache) Compile(fields []domain.FieldDefinition) (*form.Schema, error) {
	return form.Compile(fields, sc.opts)
}
