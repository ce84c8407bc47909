// Package version exposes the build version of the rc binary.
package version

// value is overridden at build time:
//
//	go build -ldflags "-X github.com/bkyoung/review-consolidator/internal/version.value=v1.2.3"
var value = "dev"

// Value returns the version string baked into the binary.
func Value() string {
	return value
}
