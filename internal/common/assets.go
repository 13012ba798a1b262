package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"crypto-ledger-go/internal/ledger"
	"crypto-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type NetworkConfig struct {
	Id   string `yaml:"id"`
	Name string `yaml:"name"`
}

type AssetConfig struct {
	Symbol   string          `yaml:"symbol"`
	Name     string          `yaml:"name"`
	Price    string          `yaml:"price"`
	Networks []NetworkConfig `yaml:"networks"`
}

type AssetsConfig struct {
	Assets []AssetConfig `yaml:"assets"`
}

func LoadAssetConfig(assetsFile string) ([]AssetConfig, error) {
	var assetsPath string
	if filepath.IsAbs(assetsFile) {
		assetsPath = assetsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		assetsPath = filepath.Join(wd, assetsFile)
	}

	data, err := os.ReadFile(assetsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", assetsFile, err)
	}

	var config AssetsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", assetsFile, err)
	}

	for i, asset := range config.Assets {
		if asset.Symbol == "" {
			return nil, fmt.Errorf("asset at index %d missing symbol", i)
		}
		if asset.Price == "" {
			return nil, fmt.Errorf("asset %s missing price", asset.Symbol)
		}
		if len(asset.Networks) == 0 {
			return nil, fmt.Errorf("asset %s has no networks", asset.Symbol)
		}
		for j, network := range asset.Networks {
			if network.Id == "" {
				return nil, fmt.Errorf("asset %s network at index %d missing id", asset.Symbol, j)
			}
		}
	}

	return config.Assets, nil
}

// BuildAssets converts the parsed config into catalog entries, validating
// each quoted price along the way.
func BuildAssets(configs []AssetConfig) ([]models.Asset, error) {
	assets := make([]models.Asset, 0, len(configs))
	for _, cfg := range configs {
		price, err := decimal.NewFromString(cfg.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid price for %s: %q (%w)", cfg.Symbol, cfg.Price, err)
		}
		if !price.IsPositive() {
			return nil, fmt.Errorf("price for %s must be positive, got %s", cfg.Symbol, price)
		}

		networks := make([]models.Network, len(cfg.Networks))
		for i, network := range cfg.Networks {
			networks[i] = models.Network{Id: network.Id, Name: network.Name}
		}

		assets = append(assets, models.Asset{
			Symbol:   cfg.Symbol,
			Name:     cfg.Name,
			Price:    price,
			Networks: networks,
		})
	}
	return assets, nil
}

// SeedCatalog registers every asset from the file into the platform,
// skipping symbols that are already listed.
func SeedCatalog(platform *ledger.Platform, assetsFile string) (int, error) {
	configs, err := LoadAssetConfig(assetsFile)
	if err != nil {
		return 0, err
	}

	assets, err := BuildAssets(configs)
	if err != nil {
		return 0, err
	}

	registered := 0
	for _, asset := range assets {
		if err := platform.RegisterAsset(asset); err != nil {
			if errors.Is(err, ledger.ErrDuplicateAsset) {
				continue
			}
			return registered, err
		}
		registered++
	}
	return registered, nil
}
