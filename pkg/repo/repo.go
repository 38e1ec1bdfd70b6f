package repo

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/odvcencio/geogot/pkg/object"
	"github.com/odvcencio/geogot/pkg/ref"
	"github.com/odvcencio/geogot/pkg/refs"
)

// DirName is the repository metadata directory inside the working root.
const DirName = ".geogot"

// Repo represents an opened repository.
type Repo struct {
	RootDir string        // working directory root
	Dir     string        // .geogot/ directory
	Objects *object.Store // content-addressed object store
	Refs    *refs.Store   // ref bindings and reflogs
	Config  *Config

	log logrus.FieldLogger
}

// Option configures Init and Open.
type Option func(*options)

type options struct {
	log logrus.FieldLogger
}

// WithLogger routes repository and ref-store events to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(opts []Option) options {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	o := options{log: quiet}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newRepo(root, dir string, cfg *Config, o options) (*Repo, error) {
	level, err := cfg.CompressionLevel()
	if err != nil {
		return nil, err
	}
	log := o.log.WithField("repo", root)
	return &Repo{
		RootDir: root,
		Dir:     dir,
		Objects: object.NewStore(dir, object.WithCompression(level)),
		Refs: refs.NewStore(dir,
			refs.WithLockTimeout(cfg.Refs.LockTimeout.Duration),
			refs.WithLogger(log),
		),
		Config: cfg,
		log:    log,
	}, nil
}

func headsRef(branch string) string  { return ref.HeadsPrefix + branch }
func tagsRef(tag string) string      { return ref.TagsPrefix + tag }
func remoteRef(remote string) string { return ref.RefsPrefix + ref.RemotesPrefix + remote }
