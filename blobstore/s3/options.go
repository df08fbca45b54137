package s3

type options struct {
	prefix       string
	region       string
	endpoint     string
	usePathStyle bool
	partSize     int64
	concurrency  int
}

// Option configures New and NewStore.
type Option func(*options)

// WithPrefix sets the key prefix used by New.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion overrides the region from the default config chain.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the client at an S3-compatible endpoint and enables
// path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
		o.usePathStyle = true
	}
}

// WithPartSize sets the multipart part size. Defaults to 8 MiB.
func WithPartSize(n int64) Option {
	return func(o *options) { o.partSize = n }
}

// WithUploadConcurrency sets the number of parts uploaded in parallel.
func WithUploadConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

func applyOptions(opts []Option) options {
	o := options{
		partSize:    8 << 20,
		concurrency: 5,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
