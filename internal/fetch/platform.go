// Package fetch - platform.go classifies URLs by hosting platform and provides platform-specific selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known hosting platform.
type Platform string

const (
	// PlatformHFSpace is a hosted demo on Hugging Face Spaces
	PlatformHFSpace Platform = "huggingface_space"
	// PlatformHuggingFace is any other Hugging Face page (models, datasets)
	PlatformHuggingFace Platform = "huggingface"
	// PlatformReplicate is the Replicate model hosting platform
	PlatformReplicate Platform = "replicate"
	// PlatformGitHub is the GitHub code host
	PlatformGitHub Platform = "github"
	// PlatformYouTube is YouTube, including youtu.be short links
	PlatformYouTube Platform = "youtube"
	// PlatformReddit is Reddit
	PlatformReddit Platform = "reddit"
	// PlatformV2EX is the V2EX forum
	PlatformV2EX Platform = "v2ex"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the hosting platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil || parsed.Host == "" {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	path := strings.ToLower(parsed.Path)

	switch {
	case hostIs(host, "huggingface.co") || hostIs(host, "hf.co"):
		if strings.HasPrefix(path, "/spaces/") {
			return PlatformHFSpace
		}
		return PlatformHuggingFace
	case strings.HasSuffix(host, ".hf.space"):
		return PlatformHFSpace
	case hostIs(host, "replicate.com"):
		return PlatformReplicate
	case hostIs(host, "github.com"):
		return PlatformGitHub
	case hostIs(host, "youtube.com") || hostIs(host, "youtu.be"):
		return PlatformYouTube
	case hostIs(host, "reddit.com"):
		return PlatformReddit
	case hostIs(host, "v2ex.com"):
		return PlatformV2EX
	}

	return PlatformUnknown
}

// IsDemoOrCodeHost reports whether a URL can stand in as its own preview:
// a hosted demo or a code repository.
func IsDemoOrCodeHost(urlStr string) bool {
	switch DetectPlatform(urlStr) {
	case PlatformHFSpace, PlatformGitHub:
		return true
	default:
		return false
	}
}

func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformGitHub:
		return []string{
			"article.markdown-body",
			"#readme",
			".repository-content",
			"main",
		}
	case PlatformHFSpace, PlatformHuggingFace:
		return []string{
			".model-card-content",
			".prose",
			"main",
		}
	case PlatformReddit:
		return []string{
			"shreddit-post",
			"[data-test-id='post-content']",
			".Post",
			"main",
		}
	case PlatformV2EX:
		return []string{
			"#Main .topic_content",
			"#Main",
		}
	default:
		return DefaultTextSelectors()
	}
}

// DefaultTextSelectors returns the content selectors tried on pages of no
// known platform, most specific first.
func DefaultTextSelectors() []string {
	return []string{"main", "article", ".content", "#content", ".main-content", "#main-content"}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		".social-share",
		".share-buttons",
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformGitHub:
		return append(common,
			".file-navigation",
			".Box-header",
			"#repository-container-header",
		)
	case PlatformReddit:
		return append(common,
			"shreddit-comments-sort-dropdown",
			"[data-testid='ad-post']",
		)
	case PlatformV2EX:
		return append(common,
			"#Rightbar",
			".reply_content",
		)
	default:
		return common
	}
}
