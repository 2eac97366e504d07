// Package config holds the firmware tunables.
//
// Default returns the values compiled into the image. The host build can
// override them from a file (see Load); the keymap is never configurable.
package config

import (
	"fmt"
	"strings"
	"time"

	"keyball/firmware/layout"
)

// Config is the tunable surface consumed by the fusion engine and tasks.
type Config struct {
	// TapThreshold separates a tap from a hold.
	TapThreshold Duration `toml:"tap_threshold" yaml:"tap_threshold"`
	// PermissiveHold resolves a held tap-hold key to its hold code once
	// another normal key is pressed.
	PermissiveHold bool `toml:"permissive_hold" yaml:"permissive_hold"`

	// AutoPointerLayer is the layer activated by pointer activity.
	AutoPointerLayer int `toml:"auto_pointer_layer" yaml:"auto_pointer_layer"`
	// AutoPointerDuration keeps the layer active after the last activity.
	AutoPointerDuration Duration `toml:"auto_pointer_duration" yaml:"auto_pointer_duration"`
	// AutoPointerThreshold is the per-axis motion that counts as activity.
	AutoPointerThreshold int `toml:"auto_pointer_threshold" yaml:"auto_pointer_threshold"`

	// ScrollDividerX divides the pan axis; ScrollDividerY the wheel axis.
	ScrollDividerX int `toml:"scroll_divider_x" yaml:"scroll_divider_x"`
	ScrollDividerY int `toml:"scroll_divider_y" yaml:"scroll_divider_y"`

	// ArrowBallThreshold is the motion per arrow key on a pointer layer.
	ArrowBallThreshold int `toml:"arrow_ball_threshold" yaml:"arrow_ball_threshold"`

	// SplitChannelSize is the depth of each split link queue.
	SplitChannelSize int `toml:"split_channel_size" yaml:"split_channel_size"`
	// SplitUSBTimeout bounds the wait for the host at boot.
	SplitUSBTimeout Duration `toml:"split_usb_timeout" yaml:"split_usb_timeout"`

	// MinScanInterval paces the fusion loop.
	MinScanInterval Duration `toml:"min_scan_interval" yaml:"min_scan_interval"`

	// DoubleTapWindow is how long a reset counts toward a double tap.
	DoubleTapWindow Duration `toml:"double_tap_window" yaml:"double_tap_window"`
	// DisplayInterval is the status redraw period.
	DisplayInterval Duration `toml:"display_interval" yaml:"display_interval"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		TapThreshold:         Duration(200 * time.Millisecond),
		AutoPointerLayer:     1,
		AutoPointerDuration:  Duration(500 * time.Millisecond),
		AutoPointerThreshold: 1,
		ScrollDividerX:       20,
		ScrollDividerY:       -12,
		ArrowBallThreshold:   10,
		SplitChannelSize:     10,
		SplitUSBTimeout:      Duration(200 * time.Millisecond),
		MinScanInterval:      Duration(5 * time.Millisecond),
		DoubleTapWindow:      Duration(500 * time.Millisecond),
		DisplayInterval:      Duration(50 * time.Millisecond),
	}
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks ranges. It returns ValidationErrors or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors
	positive := func(field string, d Duration) {
		if d <= 0 {
			errs = append(errs, ValidationError{Field: field, Message: "must be positive"})
		}
	}
	positive("tap_threshold", c.TapThreshold)
	positive("auto_pointer_duration", c.AutoPointerDuration)
	positive("split_usb_timeout", c.SplitUSBTimeout)
	positive("min_scan_interval", c.MinScanInterval)
	positive("double_tap_window", c.DoubleTapWindow)
	positive("display_interval", c.DisplayInterval)

	if c.AutoPointerLayer <= 0 || c.AutoPointerLayer >= layout.LayerNum {
		errs = append(errs, ValidationError{
			Field:   "auto_pointer_layer",
			Message: fmt.Sprintf("must be in 1..%d", layout.LayerNum-1),
		})
	}
	if c.AutoPointerThreshold < 0 || c.AutoPointerThreshold > 127 {
		errs = append(errs, ValidationError{Field: "auto_pointer_threshold", Message: "must be in 0..127"})
	}
	if c.ScrollDividerX == 0 {
		errs = append(errs, ValidationError{Field: "scroll_divider_x", Message: "must not be zero"})
	}
	if c.ScrollDividerY == 0 {
		errs = append(errs, ValidationError{Field: "scroll_divider_y", Message: "must not be zero"})
	}
	if c.ArrowBallThreshold <= 0 {
		errs = append(errs, ValidationError{Field: "arrow_ball_threshold", Message: "must be positive"})
	}
	if c.SplitChannelSize <= 0 || c.SplitChannelSize > 256 {
		errs = append(errs, ValidationError{Field: "split_channel_size", Message: "must be in 1..256"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
