package config

import "fmt"

// DefaultProfileName is the viewer profile used when none is requested.
const DefaultProfileName = "panopto"

// Profile holds viewer-specific selectors and recognition settings.
// Different lecture platforms lay out their viewer pages differently, so
// the selectors that locate thumbnails and the video player are
// configurable per platform.
type Profile struct {
	// StripSelector locates the thumbnail strip container. Its presence
	// is used as the readiness signal after page load.
	StripSelector string `yaml:"stripSelector,omitempty"`

	// PlayerSelector locates the video player element.
	PlayerSelector string `yaml:"playerSelector,omitempty"`

	// ImageAttr is the attribute on thumbnail img elements that carries
	// the image URL. Lazy-loading viewers use data-src instead of src.
	ImageAttr string `yaml:"imageAttr,omitempty"`

	// ThumbnailClass is the class of thumbnail list items that carry
	// navigation timestamps.
	ThumbnailClass string `yaml:"thumbnailClass,omitempty"`

	// TimestampClass is the class of the element holding a thumbnail's
	// timestamp label.
	TimestampClass string `yaml:"timestampClass,omitempty"`

	// TriggerPhrases are the case-insensitive phrases that mark a frame
	// as containing an attendance code.
	TriggerPhrases []string `yaml:"triggerPhrases,omitempty"`
}

// overlay returns base with the non-empty fields of over applied on top.
func overlay(base, over Profile) Profile {
	result := base
	if over.StripSelector != "" {
		result.StripSelector = over.StripSelector
	}
	if over.PlayerSelector != "" {
		result.PlayerSelector = over.PlayerSelector
	}
	if over.ImageAttr != "" {
		result.ImageAttr = over.ImageAttr
	}
	if over.ThumbnailClass != "" {
		result.ThumbnailClass = over.ThumbnailClass
	}
	if over.TimestampClass != "" {
		result.TimestampClass = over.TimestampClass
	}
	if len(over.TriggerPhrases) > 0 {
		result.TriggerPhrases = over.TriggerPhrases
	}
	return result
}

// File represents the structure of the .clickerscrape.yaml configuration file.
type File struct {
	// Profiles maps profile names to their viewer configurations.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`

	// Defaults contains default profile settings applied to all profiles
	// unless overridden in the profile-specific configuration.
	Defaults Profile `yaml:"defaults,omitempty"`
}

// GetProfile returns the named profile merged with defaults.
// The second return value reports whether the profile was defined.
func (cf *File) GetProfile(name string) (Profile, bool) {
	p, ok := cf.Profiles[name]
	if !ok {
		return Profile{}, false
	}
	return overlay(cf.Defaults, p), true
}

// builtinProfiles holds the profiles shipped with the tool.
// The panopto profile matches the viewer layout the tool was built
// against; other platforms are expected to be defined in the config file.
func builtinProfiles() map[string]Profile {
	return map[string]Profile{
		"panopto": {
			StripSelector:  ".thumbnail-strip",
			PlayerSelector: ".panopto-player",
			ImageAttr:      "data-src",
			ThumbnailClass: "thumbnail",
			TimestampClass: "thumbnail-timestamp",
			TriggerPhrases: []string{"attendance code", "clicker question"},
		},
	}
}

// ResolveProfile resolves ProfileName against the built-in profiles and
// the loaded configuration file. Config file profiles are layered on top
// of the built-in profile of the same name, so a file can override a
// single selector without restating the rest.
func (c *Config) ResolveProfile() (Profile, error) {
	name := c.ProfileName
	if name == "" {
		name = DefaultProfileName
	}

	builtin, haveBuiltin := builtinProfiles()[name]

	if c.Profiles != nil {
		if fromFile, ok := c.Profiles.GetProfile(name); ok {
			if haveBuiltin {
				return overlay(builtin, fromFile), nil
			}
			return fromFile, nil
		}
	}

	if haveBuiltin {
		return builtin, nil
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}
