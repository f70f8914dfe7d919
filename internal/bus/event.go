package bus

import "github.com/llehouerou/graphtime/internal/epoch"

// InstanceID identifies one mounted controller. Topics are scoped by it.
type InstanceID string

// Topic enumerates the event kinds a renderer or the settings layer emits.
type Topic int

const (
	TopicProgress Topic = iota
	TopicComplete
	TopicSettingsChanged
)

// Topics lists every topic in declaration order.
var Topics = []Topic{TopicProgress, TopicComplete, TopicSettingsChanged}

// String returns the topic name.
func (t Topic) String() string {
	switch t {
	case TopicProgress:
		return "progress"
	case TopicComplete:
		return "complete"
	case TopicSettingsChanged:
		return "settings-changed"
	default:
		return "unknown"
	}
}

// Key addresses one listener slot on the broker.
type Key struct {
	Instance InstanceID
	Topic    Topic
}

func (k Key) String() string {
	return string(k.Instance) + "/" + k.Topic.String()
}

// Event is implemented by Progress, Complete and SettingsChanged only.
type Event interface {
	Topic() Topic
	event()
}

// Progress is emitted by the renderer on every animation step.
type Progress struct {
	Position float64 // normalized, 0..1
	Playing  bool
	Cutoff   epoch.Cutoff
}

// Complete is emitted when the renderer reaches the end of the timeline.
type Complete struct{}

// SettingsChanged signals that the display settings were mutated.
type SettingsChanged struct{}

func (Progress) Topic() Topic        { return TopicProgress }
func (Complete) Topic() Topic        { return TopicComplete }
func (SettingsChanged) Topic() Topic { return TopicSettingsChanged }

func (Progress) event()        {}
func (Complete) event()        {}
func (SettingsChanged) event() {}
