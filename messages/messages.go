package messages

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/google/go-jsonnet"
)

//go:embed jsonnet/*
var messages embed.FS

// MessageProvider renders named jsonnet message templates to Discord message
// JSON. Safe for concurrent use.
type MessageProvider struct {
	vm   *jsonnet.VM
	vmMu sync.Mutex
}

func NewMessageProvider() (*MessageProvider, error) {
	m := &MessageProvider{
		vm: jsonnet.MakeVM(),
	}

	imports := make(map[string]jsonnet.Contents)
	err := fs.WalkDir(messages, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			content, err := messages.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			imports[strings.TrimPrefix(path, "jsonnet/")] = jsonnet.MakeContentsRaw(content)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	m.vm.Importer(&jsonnet.MemoryImporter{
		Data: imports,
	})

	_, _, err = m.vm.ImportData("anonymous", "index.jsonnet")
	if err != nil {
		return nil, fmt.Errorf("importing index: %w", err)
	}

	return m, nil
}

func (m *MessageProvider) ExecuteMessage(messageName string, data any) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshaling data: %w", err)
	}

	m.vmMu.Lock()
	defer m.vmMu.Unlock()

	m.vm.TLAVar("message_key", messageName)
	m.vm.TLACode("data", string(jsonData))
	defer m.vm.TLAReset()

	jsonOut, err := m.vm.EvaluateAnonymousSnippet("anonymous", "function(message_key, data) (import 'index.jsonnet')[message_key](data)")
	if err != nil {
		return "", fmt.Errorf("evaluating jsonnet %q: %w", messageName, err)
	}

	return jsonOut, nil
}
