package mock_generator

import (
	"encoding/json"
	"os"
	"weaveit-pipeline/application/ports/outbound"
)

// MockNarration is a canned enhancer response. Delay is in milliseconds.
type MockNarration struct {
	Title     string `json:"title"`
	Narration string `json:"narration"`
	Delay     int    `json:"delay"`
}

type NarrationReader interface {
	Read(fileName string) (map[string]MockNarration, error)
}

type fileNarrationReader struct {
	logger outbound.LoggerPort
}

func NewFileNarrationReader(logger outbound.LoggerPort) NarrationReader {
	return &fileNarrationReader{
		logger: logger,
	}
}

// Read loads a JSON array of narrations keyed by title.
func (f *fileNarrationReader) Read(fileName string) (map[string]MockNarration, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			f.logger.Error(err, "failed to close file")
		}
	}(file)

	var narrations []MockNarration
	if err := json.NewDecoder(file).Decode(&narrations); err != nil {
		f.logger.Error(err, "failed to decode json")
		return nil, err
	}

	byTitle := make(map[string]MockNarration, len(narrations))
	for _, n := range narrations {
		byTitle[n.Title] = n
	}
	return byTitle, nil
}
