package catalog

import (
	"fmt"
	"os"
	"sort"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/webhook/signature"
	"gopkg.in/yaml.v3"
)

/* Loader manages the gateway catalog from gateways.yaml
 * Provides in-memory lookup for fast access
 */

// File represents the structure of gateways.yaml
type File struct {
	DefaultWebhookGateway gateway.ID `yaml:"default_webhook_gateway"`
	Gateways              []Entry    `yaml:"gateways"`
}

// Loader holds the loaded gateways
type Loader struct {
	entries        map[gateway.ID]*Entry
	order          []gateway.ID
	webhookDefault gateway.ID
}

// NewLoader creates a new catalog loader
func NewLoader() *Loader {
	return &Loader{
		entries: make(map[gateway.ID]*Entry),
	}
}

// Load reads and parses the gateways.yaml file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading gateways file: %w", err)
	}
	return l.Parse(data)
}

// Parse loads the catalog from raw YAML, replacing anything loaded before
func (l *Loader) Parse(data []byte) error {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing gateways YAML: %w", err)
	}
	if len(file.Gateways) == 0 {
		return fmt.Errorf("catalog declares no gateways")
	}

	entries := make(map[gateway.ID]*Entry, len(file.Gateways))
	order := make([]gateway.ID, 0, len(file.Gateways))
	for i := range file.Gateways {
		entry := file.Gateways[i]
		if entry.Adapter == "" {
			entry.Adapter = HTTPAdapter
		}
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("validating gateway: %w", err)
		}
		if _, dup := entries[entry.ID]; dup {
			return fmt.Errorf("gateway %s declared twice", entry.ID)
		}
		entries[entry.ID] = &entry
		order = append(order, entry.ID)
	}

	webhookDefault := file.DefaultWebhookGateway
	if webhookDefault == "" {
		webhookDefault = gateway.MercadoPago
	}
	if _, ok := entries[webhookDefault]; !ok && file.DefaultWebhookGateway != "" {
		return fmt.Errorf("default_webhook_gateway %s is not declared", webhookDefault)
	}

	// declaration order breaks ties between equal preferences
	sort.SliceStable(order, func(i, j int) bool {
		return rankOf(entries[order[i]]) < rankOf(entries[order[j]])
	})

	l.entries = entries
	l.order = order
	l.webhookDefault = webhookDefault
	return nil
}

// rankOf places entries without an explicit preference last
func rankOf(e *Entry) int {
	if e.Preference == 0 {
		return int(^uint(0) >> 1)
	}
	return e.Preference
}

// Get retrieves a gateway by its id
func (l *Loader) Get(id gateway.ID) (*Entry, error) {
	entry, exists := l.entries[id]
	if !exists {
		return nil, fmt.Errorf("gateway not found: %s", id)
	}
	return entry, nil
}

// List returns all loaded gateways in preference order
func (l *Loader) List() []*Entry {
	list := make([]*Entry, 0, len(l.order))
	for _, id := range l.order {
		list = append(list, l.entries[id])
	}
	return list
}

// Exists checks if a gateway id is declared
func (l *Loader) Exists(id gateway.ID) bool {
	_, exists := l.entries[id]
	return exists
}

// WebhookSecret returns the secret inbound notifications of id are signed with
func (l *Loader) WebhookSecret(id gateway.ID) (signature.Secret, bool) {
	entry, exists := l.entries[id]
	if !exists {
		return signature.Secret{}, false
	}
	return entry.Secret()
}

// DefaultWebhookGateway is the gateway assumed for unrecognized notifications
func (l *Loader) DefaultWebhookGateway() gateway.ID {
	return l.webhookDefault
}

// Registrations builds the router registrations for every declared gateway
func (l *Loader) Registrations(forceSimulated bool) ([]gateway.Registration, error) {
	regs := make([]gateway.Registration, 0, len(l.order))
	for _, e := range l.List() {
		adapter, err := e.NewAdapter(forceSimulated)
		if err != nil {
			return nil, fmt.Errorf("building adapter for gateway %s: %w", e.ID, err)
		}
		regs = append(regs, gateway.Registration{
			ID:         e.ID,
			Adapter:    adapter,
			Profile:    e.Profile(),
			Preference: e.Preference,
		})
	}
	return regs, nil
}
