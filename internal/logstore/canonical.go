package logstore

import (
	"net/url"
	"path"
	"strings"

	"tablelog/internal/common"
)

// Canonicalize resolves raw into the canonical URI used as the key for
// activeFiles/tombstones (spec §4.3). If raw carries its own scheme it is
// parsed and re-serialized in place; otherwise it is resolved against root
// and qualified with root's scheme and authority. Percent-escaping is
// preserved through net/url's own decode/re-encode cycle, which is exactly
// what makes two raw strings that encode the same path collide after
// canonicalization (spec §8 S3) and makes the function idempotent (spec §8
// property 4): re-parsing an already-canonical URI decodes and re-encodes
// to the same bytes.
func Canonicalize(root, raw string) (string, error) {
	rootURL, err := asURL(root)
	if err != nil {
		return "", common.ErrInvalidInputf("invalid table root %q: %v", root, err)
	}

	rawURL, err := url.Parse(raw)
	if err != nil {
		return "", common.ErrInvalidInputf("invalid path %q: %v", raw, err)
	}

	var resolved *url.URL
	if rawURL.IsAbs() {
		resolved = rawURL
	} else {
		resolved = rootURL.ResolveReference(rawURL)
	}

	resolved.Path = path.Clean(resolved.Path)
	// path.Clean strips a trailing slash and collapses "." — neither can
	// appear in a data file path, but guard against an empty result from a
	// root-only reference.
	if resolved.Path == "." {
		resolved.Path = "/"
	}

	return resolved.String(), nil
}

// asURL turns a bare filesystem path (no scheme) into a file:// URI, or
// parses an already-schemed root (s3://, file://, …) unchanged.
func asURL(root string) (*url.URL, error) {
	if strings.Contains(root, "://") {
		u, err := url.Parse(root)
		if err != nil {
			return nil, err
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		return u, nil
	}

	abs := root
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	if !strings.HasSuffix(abs, "/") {
		abs += "/"
	}
	return &url.URL{Scheme: "file", Path: abs}, nil
}
