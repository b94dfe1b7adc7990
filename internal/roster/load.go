package roster

import (
	"context"
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/visitor-leads/internal/model"
)

//go:embed default.yaml
var defaultYAML []byte

// DefaultSource names the embedded roster.
const DefaultSource = "default"

// ErrInvalid is returned when a roster fails validation.
var ErrInvalid = eris.New("roster: invalid")

// Downloader fetches remote roster documents.
type Downloader interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Parse decodes and validates a roster document. The YAML has a top-level
// "roster" key.
func Parse(data []byte) (*Roster, error) {
	var wrapper struct {
		Roster Roster `yaml:"roster"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "roster: parse")
	}

	r := &wrapper.Roster
	for key, p := range r.Policies {
		p.Category = key
		r.Policies[key] = p
	}
	if r.Freshness.Anchor != "" {
		d, err := model.ParseDate(r.Freshness.Anchor)
		if err != nil {
			return nil, eris.Wrapf(ErrInvalid, "freshness anchor %q", r.Freshness.Anchor)
		}
		r.Freshness.anchor = d.Time
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Default returns the embedded roster.
func Default() *Roster {
	r, err := Parse(defaultYAML)
	if err != nil {
		panic(eris.Wrap(err, "roster: embedded default"))
	}
	return r
}

// LoadFile reads a roster from a local YAML file.
func LoadFile(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "roster: read %s", path)
	}
	return Parse(data)
}

// Load resolves source to a roster. An empty source or "default" selects the
// embedded roster; http(s):// and ftp:// URLs are fetched with dl; anything
// else is a local path.
func Load(ctx context.Context, source string, dl Downloader) (*Roster, error) {
	switch {
	case source == "" || source == DefaultSource:
		return Default(), nil
	case isRemote(source):
		if dl == nil {
			return nil, eris.Errorf("roster: no downloader for %s", source)
		}
		zap.L().Info("roster: downloading", zap.String("source", source))
		rc, err := dl.Download(ctx, source)
		if err != nil {
			return nil, eris.Wrapf(err, "roster: download %s", source)
		}
		defer rc.Close() //nolint:errcheck

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, eris.Wrapf(err, "roster: read %s", source)
		}
		return Parse(data)
	default:
		return LoadFile(source)
	}
}

func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "ftp://")
}
