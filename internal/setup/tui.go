package setup

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/vadiminshakov/coinsight/config"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// answers raw wizard input.
type answers struct {
	input    string
	output   string
	top      string
	lookback string
	seed     string
	workers  string
}

func defaultAnswers() answers {
	return answers{
		output:   string(config.OutputTable),
		top:      strconv.Itoa(config.DefaultTop),
		lookback: strconv.Itoa(config.DefaultLookbackDays),
		seed:     "0",
		workers:  "0",
	}
}

// RunTUI launches the terminal configuration wizard and writes config.gen.yaml.
func RunTUI() error {
	a := defaultAnswers()
	var confirm bool

	// step 1: data
	header("STEP 1: MARKET DATA")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Point coinsight at a listing export.\n"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listing file").
				Description("YAML or JSON in listings format (e.g. listing.json)").
				Value(&a.input).
				Validate(validateInput),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: report
	header("STEP 2: REPORT")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output format").
				Options(
					huh.NewOption("Table", string(config.OutputTable)),
					huh.NewOption("YAML", string(config.OutputYAML)),
				).
				Value(&a.output),
			huh.NewInput().
				Title("Recommendations to show").
				Description("0 shows every asset").
				Value(&a.top).
				Validate(validateNonNegative),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 3: model
	header("STEP 3: MODEL")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("History days").
				Description("Synthetic look-back per asset, min 50 for the model ensemble").
				Value(&a.lookback).
				Validate(validatePositive),
			huh.NewInput().
				Title("Random seed").
				Description("0 picks a new seed every run").
				Value(&a.seed).
				Validate(validateSeed),
			huh.NewInput().
				Title("Workers").
				Description("Concurrent evaluations, 0 means unlimited").
				Value(&a.workers).
				Validate(validateNonNegative),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	header("FINAL CONFIRMATION")

	summary := fmt.Sprintf(
		"Input: %s\nOutput: %s\nTop: %s\nHistory days: %s\nSeed: %s\nWorkers: %s\n",
		a.input, a.output, a.top, a.lookback, a.seed, a.workers,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and run").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	data, err := yaml.Marshal(a.configTmp())
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	if err := os.WriteFile(config.GeneratedPath, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nEvaluating...", config.GeneratedPath)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func header(step string) {
	fmt.Print("\033[H\033[2J") // clear screen
	fmt.Println(headerStyle.Render("COINSIGHT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(step))
}

func (a answers) configTmp() config.ConfigTmp {
	return config.ConfigTmp{
		Input:           a.input,
		LookbackDaysStr: a.lookback,
		TopStr:          a.top,
		SeedStr:         a.seed,
		WorkersStr:      a.workers,
		Output:          a.output,
	}
}

func validateInput(s string) error {
	if s == "" {
		return fmt.Errorf("listing file cannot be empty")
	}
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("cannot open listing: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", s)
	}
	return nil
}

func validatePositive(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if v < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

func validateNonNegative(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if v < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateSeed(s string) error {
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}
