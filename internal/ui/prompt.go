package ui

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ConfirmPrompt asks a yes/no confirmation question
func ConfirmPrompt(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			// IsConfirm prompts abort on "n"; that is an answer, not an error.
			return false, nil
		}
		return false, err
	}

	return result == "y" || result == "Y" || result == "", nil
}

// SelectPrompt presents a list of options for selection
func SelectPrompt(label string, items []string) (int, string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
	}

	index, result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return -1, "", fmt.Errorf("selection cancelled by user")
		}
		return -1, "", err
	}

	return index, result, nil
}

// Resume choices offered when persisted state from an earlier run exists.
const (
	ResumeChoiceResume = "Resume (skip completed steps)"
	ResumeChoiceFresh  = "Start fresh (discard saved progress)"
)

// PromptResume asks whether to resume an interrupted run. Returns true to
// resume, false to start over.
func PromptResume(completed int) (bool, error) {
	label := fmt.Sprintf("Found progress from a previous run (%d steps completed)", completed)
	idx, _, err := SelectPrompt(label, []string{ResumeChoiceResume, ResumeChoiceFresh})
	if err != nil {
		return false, err
	}
	return idx == 0, nil
}
