package pollclient

import "weaveit-pipeline/domain"

func StepsFor(outputType domain.OutputType) []string {
	switch outputType {
	case domain.AudioOutputType:
		return []string{
			"Analyzing your script...",
			"Generating AI narration...",
			"Processing audio...",
			"Finalizing output...",
		}
	case domain.BothOutputType:
		return []string{
			"Analyzing your script...",
			"Generating AI narration...",
			"Creating visual elements...",
			"Rendering video...",
			"Processing audio...",
			"Finalizing outputs...",
		}
	default:
		return []string{
			"Analyzing your script...",
			"Generating AI narration...",
			"Creating visual elements...",
			"Rendering video...",
			"Finalizing output...",
		}
	}
}

// StepAt spreads the labels evenly over the attempt budget. The last label
// holds once reached.
func StepAt(steps []string, attempt int, maxAttempts int) string {
	if len(steps) == 0 {
		return ""
	}
	perStep := max(maxAttempts/len(steps), 1)
	return steps[min(attempt/perStep, len(steps)-1)]
}
