package ai

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/myrjola/casefile/internal/errors"
	"strings"
	"time"
)

// DirectivePrefix marks a follow-up suggestion line in script output.
const DirectivePrefix = "> SUGGESTION:"

// TheoriesHeading isolates speculative material in scripts.
const TheoriesHeading = "## Alternative Theories"

const suggestionCount = 3

// Tones accepted for script compilation.
var Tones = []string{"documentary", "suspenseful", "investigative", "conversational", "somber"}

// ScriptParams are the user inputs for compiling a script.
type ScriptParams struct {
	Topic     string `validate:"required,max=500"`
	Channel   string `validate:"max=100"`
	WordCount int    `validate:"min=300,max=10000"`
	Tone      string `validate:"required,oneof=documentary suspenseful investigative conversational somber"`
	Theories  bool
}

// Composer builds request envelopes. It does no I/O.
type Composer struct {
	profile  Profile
	now      func() time.Time
	validate *validator.Validate
}

// NewComposer creates a Composer. now is injected so that the date in the system instruction is testable.
func NewComposer(profile Profile, now func() time.Time) *Composer {
	return &Composer{
		profile:  profile,
		now:      now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SystemInstruction returns the mode-independent system instruction for the current date.
func (c *Composer) SystemInstruction() string {
	var sb strings.Builder

	sb.WriteString("You are a meticulous research assistant for true-crime and documentary creators.\n")
	sb.WriteString(fmt.Sprintf("Today's date is %s. Treat anything after your training data as unknown unless "+
		"search results confirm it.\n\n", c.now().Format("Monday, January 2, 2006")))

	sb.WriteString("Follow these rules:\n")
	sb.WriteString(fmt.Sprintf("1. Prioritise reporting from high-trust outlets: %s.\n",
		strings.Join(c.profile.Outlets, ", ")))
	sb.WriteString(fmt.Sprintf("2. Include community discussion from %s, but label every such claim explicitly as "+
		"a theory and never present it as established fact.\n", strings.Join(c.profile.Forums, ", ")))
	sb.WriteString("3. When sources disagree, say so explicitly and name the conflicting sources instead of silently " +
		"picking one version.\n")
	sb.WriteString("4. Embed real photographic evidence with markdown image syntax ![descriptive caption](direct image " +
		"url) and put a short caption line in italics directly underneath. Only use image URLs that appear in your " +
		"sources. Never invent image URLs.\n")
	sb.WriteString("5. Link relevant news footage or interviews on YouTube as plain markdown links.\n")

	return sb.String()
}

// Research composes a web-search research request. An attachment makes the request multimodal.
func (c *Composer) Research(query string, inline *InlineBinary) RequestEnvelope {
	return RequestEnvelope{
		Mode:              ModeResearch,
		Query:             query,
		Inline:            inline,
		SystemInstruction: c.SystemInstruction(),
		WebSearch:         true,
	}
}

// Visual composes a visual analysis request for an attached image or video.
func (c *Composer) Visual(query string, inline InlineBinary) RequestEnvelope {
	var sb strings.Builder
	if strings.TrimSpace(query) != "" {
		sb.WriteString(query)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Analyse the attached media. Describe what is visible, note details that could matter to an " +
		"investigation, and state clearly what cannot be determined from the media alone.")

	return RequestEnvelope{
		Mode:              ModeVisual,
		Query:             sb.String(),
		Inline:            &inline,
		SystemInstruction: c.SystemInstruction(),
		WebSearch:         false,
	}
}

// Script composes a long-form script request. It fails when params are invalid.
func (c *Composer) Script(params ScriptParams) (RequestEnvelope, error) {
	if err := c.validate.Struct(params); err != nil {
		return RequestEnvelope{}, errors.Wrap(err, "validate script params")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write a long-form narration script of approximately %d words about: %q.\n",
		params.WordCount, params.Topic))
	if params.Channel != "" {
		sb.WriteString(fmt.Sprintf("The script is for the channel %q; match its audience.\n", params.Channel))
	}
	sb.WriteString(fmt.Sprintf("Tone: %s.\n", params.Tone))
	sb.WriteString("Structure it with markdown headings for a cold open, the acts, and a closing. Cite the sources " +
		"for every factual claim inline.\n")
	if params.Theories {
		sb.WriteString(fmt.Sprintf("Put all speculative material and community theories in a separate section with "+
			"the exact heading %q. Keep the rest of the script strictly factual.\n", TheoriesHeading))
	} else {
		sb.WriteString("Do not include speculative theories.\n")
	}
	sb.WriteString(fmt.Sprintf("\nIMPORTANT: End the response with exactly %d lines, one per line, in the form\n"+
		"%s <case title>\nnaming unrelated but adjacent cases the audience would enjoy next. Write nothing after them.",
		suggestionCount, DirectivePrefix))

	return RequestEnvelope{
		Mode:              ModeScript,
		Query:             sb.String(),
		Inline:            nil,
		SystemInstruction: c.SystemInstruction(),
		WebSearch:         true,
	}, nil
}

// Footage composes a stock-footage search whose answer is a JSON array of results.
func (c *Composer) Footage(query string) RequestEnvelope {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Find royalty-free stock footage and photos for: %q.\n", query))
	sb.WriteString(fmt.Sprintf("Search these libraries: %s.\n", strings.Join(c.profile.StockLibraries, ", ")))
	sb.WriteString("\nIMPORTANT: Return ONLY a JSON array of objects with the string fields \"title\", \"url\" and " +
		"\"source\" where source is the library name. Do not include any other text.")

	return RequestEnvelope{
		Mode:              ModeFootage,
		Query:             sb.String(),
		Inline:            nil,
		SystemInstruction: c.SystemInstruction(),
		WebSearch:         true,
	}
}

// Transcription composes a verbatim transcription request for the vision tier.
func (c *Composer) Transcription(inline InlineBinary) RequestEnvelope {
	return RequestEnvelope{
		Mode: ModeVisual,
		Query: "Transcribe all speech in the attached media verbatim. Prefix each paragraph with a [mm:ss] " +
			"timestamp and label speakers when they can be told apart. Transcribe on-screen text in brackets.",
		Inline:            &inline,
		SystemInstruction: "You are a precise transcription service. Output only the transcript.",
		WebSearch:         false,
	}
}
