package workflow

// Shape declares which event a step accepts.
type Shape int

const (
	// ExpectText accepts a free-text message.
	ExpectText Shape = iota
	// ExpectChoice accepts a callback from an inline-keyboard choice.
	ExpectChoice
	// ExpectCalendar accepts callbacks from the calendar picker.
	ExpectCalendar
)

// Choice is one inline-keyboard button: a label shown to the user and
// the opaque callback token it sends back.
type Choice struct {
	Label string
	Data  string
}

// Prompt describes what to ask the user next. Rendering to transport
// markup is the collaborator's job.
type Prompt struct {
	Text    string
	Choices [][]Choice
}
