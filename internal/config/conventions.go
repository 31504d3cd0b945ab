package config

import (
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wiring-animator/backend/internal/models"
)

// Conventions is the drawing naming-convention document. It carries every
// constant the labeling engine and diagram index need to interpret a drawing:
// layer prefixes, label prefixes, the Illustrator id delimiter, the balloon
// sentinel glyph, the highlighter stroke-width allowlists and the default
// circuit type list.
//
// The document is loaded once per process from a YAML file so installations
// can adapt to different drawing toolchains without a rebuild.
type Conventions struct {
	// Illustrator encodes "_" in ids as this token; all composite labels
	// use it as delimiter.
	LabelDelimiter string `yaml:"labelDelimiter"`

	// Modern schema layer ids and label prefixes.
	WiresLayer    string `yaml:"wiresLayer"`
	WirePrefix    string `yaml:"wirePrefix"`
	SwitchesLayer string `yaml:"switchesLayer"`
	SwitchPrefix  string `yaml:"switchPrefix"`
	BalloonsLayer string `yaml:"balloonsLayer"`
	BalloonPrefix string `yaml:"balloonPrefix"`

	// Legacy schema: one layer per circuit type, id = legacyLayerPrefix + type.
	LegacyLayerPrefix string `yaml:"legacyLayerPrefix"`

	// Color-blind label companion prefix; a wire's label element mirrors the
	// wire id with WirePrefix swapped for this token.
	WireLabelPrefix string `yaml:"wireLabelPrefix"`

	// Reserved glyph anchoring the text run that holds a balloon's live value.
	BalloonSentinel string `yaml:"balloonSentinel"`

	// Highlighter stroke-width classification.
	Highlighter HighlighterConventions `yaml:"highlighter"`

	// Circuit types seeded when an album has no user-defined catalog.
	DefaultCircuitTypes []models.CircuitType `yaml:"defaultCircuitTypes"`
}

// HighlighterConventions configures wire discovery by stroke width.
type HighlighterConventions struct {
	WireStrokeWidths          []string `yaml:"wireStrokeWidths"`
	ComplementaryStrokeWidths []string `yaml:"complementaryStrokeWidths"`
	Step                      float64  `yaml:"step"`
	IntensityStep             float64  `yaml:"intensityStep"`
}

// DefaultConventions returns the conventions used when no YAML document
// exists, matching the stock Illustrator drawing toolchain.
func DefaultConventions() *Conventions {
	return &Conventions{
		LabelDelimiter:    "_x005F_",
		WiresLayer:        "layerWires",
		WirePrefix:        "circuit",
		SwitchesLayer:     "layerSwitches",
		SwitchPrefix:      "switch",
		BalloonsLayer:     "layerDcballoons",
		BalloonPrefix:     "dcballoon",
		LegacyLayerPrefix: "layer_x005F_",
		WireLabelPrefix:   "cb",
		BalloonSentinel:   "I",
		Highlighter: HighlighterConventions{
			WireStrokeWidths:          []string{"0.5", "0.75", "1"},
			ComplementaryStrokeWidths: []string{"0.25"},
			Step:                      1,
			IntensityStep:             0.1,
		},
		DefaultCircuitTypes: []models.CircuitType{
			{Code: "battery", Name: "Battery Feed", Color: "red", ColorBlindFontColor: "white", ColorBlindText: "B"},
			{Code: "swbattery", Name: "Switched Battery Feed", Color: "green", ColorBlindFontColor: "white", ColorBlindText: "S"},
			{Code: "refvoltage", Name: "Reference Voltage", Color: "orange", ColorBlindFontColor: "black", ColorBlindText: "R"},
			{Code: "grounds", Name: "Ground", Color: "brown", ColorBlindFontColor: "white", ColorBlindText: "G"},
			{Code: "inputs", Name: "Input Signal", Color: "yellow", ColorBlindFontColor: "black", ColorBlindText: "I"},
			{Code: "outputs", Name: "Output Signal/Control Circuit", Color: "purple", ColorBlindFontColor: "white", ColorBlindText: "O"},
			{Code: "databus", Name: "Data Bus Connection", Color: "blue", ColorBlindFontColor: "white", ColorBlindText: "D"},
			{Code: "swgrounds", Name: "Switched Ground", Color: "#C0C0C0", ColorBlindFontColor: "black", ColorBlindText: "Z"},
		},
	}
}

// LoadConventions loads the conventions from a YAML file. A missing file is
// not an error; the defaults are written out and returned.
func LoadConventions(path string) (*Conventions, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		conv := DefaultConventions()
		if err := conv.Save(path); err != nil {
			return nil, err
		}
		return conv, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseConventions(file)
}

// ParseConventions parses a conventions document from an io.Reader. Fields
// absent from the document keep their default values.
func ParseConventions(r io.Reader) (*Conventions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	conv := DefaultConventions()
	if err := yaml.Unmarshal(data, conv); err != nil {
		return nil, err
	}

	return conv, nil
}

// Save writes the conventions document as YAML.
func (c *Conventions) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Label joins prefix and numeric suffix with the configured delimiter.
func (c *Conventions) Label(prefix string, n int) string {
	return prefix + c.LabelDelimiter + strconv.Itoa(n)
}
