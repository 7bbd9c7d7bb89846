// Package mindfulness serves the static catalog of guided resources bundled
// with the app. The catalog is compiled in; there is no store behind it.
package mindfulness

// Kind classifies a resource. The wire values mirror the labels the app
// shows, the same way report reasons do.
type Kind string

// Resource kinds.
const (
	KindMeditation   Kind = "Meditation"
	KindBreathwork   Kind = "Breathwork"
	KindJournaling   Kind = "Journaling"
	KindAffirmations Kind = "Affirmations"
)

// Valid reports whether k names a known resource kind.
func (k Kind) Valid() bool {
	switch k {
	case KindMeditation, KindBreathwork, KindJournaling, KindAffirmations:
		return true
	}
	return false
}

// Exercise is one guided resource in the catalog. AudioFile names the
// bundled recording when the resource has one; journaling prompts are
// text-only.
type Exercise struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Kind            Kind    `json:"kind"`
	DurationMinutes int     `json:"duration_minutes"`
	Description     string  `json:"description"`
	ImageName       string  `json:"image_name"`
	AudioFile       *string `json:"audio_file,omitempty"`
}

func audio(name string) *string { return &name }

var catalog = []Exercise{
	{
		ID:              "5-minute-breathing",
		Title:           "5-Minute Breathing",
		Kind:            KindBreathwork,
		DurationMinutes: 5,
		Description:     "Simple breathing exercise to calm your mind",
		ImageName:       "breathwork1",
		AudioFile:       audio("breathing_5min"),
	},
	{
		ID:              "letting-go-meditation",
		Title:           "Letting Go Meditation",
		Kind:            KindMeditation,
		DurationMinutes: 10,
		Description:     "Release what no longer serves you",
		ImageName:       "meditation1",
		AudioFile:       audio("letting_go"),
	},
	{
		ID:              "healing-affirmations",
		Title:           "Healing Affirmations",
		Kind:            KindAffirmations,
		DurationMinutes: 3,
		Description:     "Positive affirmations for your healing journey",
		ImageName:       "affirmations1",
		AudioFile:       audio("healing_affirmations"),
	},
	{
		ID:              "box-breathing",
		Title:           "Box Breathing",
		Kind:            KindBreathwork,
		DurationMinutes: 4,
		Description:     "4-4-4-4 breathing technique for anxiety",
		ImageName:       "breathwork2",
		AudioFile:       audio("box_breathing"),
	},
	{
		ID:              "morning-gratitude",
		Title:           "Morning Gratitude",
		Kind:            KindJournaling,
		DurationMinutes: 10,
		Description:     "Start your day with gratitude journaling prompts",
		ImageName:       "journaling1",
	},
	{
		ID:              "body-scan-meditation",
		Title:           "Body Scan Meditation",
		Kind:            KindMeditation,
		DurationMinutes: 15,
		Description:     "Relax and release tension from your body",
		ImageName:       "meditation2",
		AudioFile:       audio("body_scan"),
	},
	{
		ID:              "self-love-affirmations",
		Title:           "Self-Love Affirmations",
		Kind:            KindAffirmations,
		DurationMinutes: 5,
		Description:     "Build confidence and self-compassion",
		ImageName:       "affirmations2",
		AudioFile:       audio("self_love"),
	},
	{
		ID:              "evening-reflection",
		Title:           "Evening Reflection",
		Kind:            KindJournaling,
		DurationMinutes: 8,
		Description:     "Process your day through guided journaling",
		ImageName:       "journaling2",
	},
	{
		ID:              "4-7-8-breathing",
		Title:           "4-7-8 Breathing",
		Kind:            KindBreathwork,
		DurationMinutes: 7,
		Description:     "Fall asleep faster with this calming technique",
		ImageName:       "breathwork3",
		AudioFile:       audio("478_breathing"),
	},
	{
		ID:              "mindful-walking",
		Title:           "Mindful Walking",
		Kind:            KindMeditation,
		DurationMinutes: 12,
		Description:     "Connect with the present moment through movement",
		ImageName:       "meditation3",
		AudioFile:       audio("mindful_walking"),
	},
}

// Catalog returns the full resource catalog. Callers must not mutate the
// returned slice.
func Catalog() []Exercise {
	return catalog
}
