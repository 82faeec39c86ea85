package sources

import (
	"fmt"

	"github.com/resistanceisuseless/sovax/internal/config"
	"go.uber.org/zap"
)

// FromConfig builds the enabled fetchers in configuration order. The HTML
// fallback is returned separately because the aggregator decides when it runs.
func FromConfig(cfg *config.Config, client Getter, logger *zap.Logger) ([]Source, Source, error) {
	logger = loggerOrNop(logger).Named("sources")

	var enabled []Source
	for _, name := range cfg.Sources.Enabled {
		switch name {
		case NameCrtsh:
			enabled = append(enabled, NewCrtsh(client, cfg.Sources.CrtshURL, logger))
		case NameThreatCrowd:
			enabled = append(enabled, NewThreatCrowd(client, cfg.Sources.ThreatCrowdURL, logger))
		case NameBufferOver:
			enabled = append(enabled, NewBufferOver(client, cfg.Sources.BufferOverURL, logger))
		case NameAlienVault:
			enabled = append(enabled, NewAlienVault(client, cfg.Sources.AlienVaultURL, logger))
		default:
			return nil, nil, fmt.Errorf("unknown source %q", name)
		}
	}

	fallback := NewCrtshHTML(client, cfg.Sources.CrtshURL, logger)
	return enabled, fallback, nil
}
