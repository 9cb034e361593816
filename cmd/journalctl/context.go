package main

import (
	"github.com/mediajournal/mediajournal/client"
)

// commandContext resolves configuration and the API client once per run.
type commandContext struct {
	apiFlag    *string
	configFlag *string
	outputFlag *string

	cfg *cliConfig
	api *client.Client
}

func newCommandContext(apiFlag, configFlag, outputFlag *string) *commandContext {
	return &commandContext{apiFlag: apiFlag, configFlag: configFlag, outputFlag: outputFlag}
}

func (c *commandContext) ensureConfig() (*cliConfig, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := loadCLIConfig(*c.configFlag)
	if err != nil {
		return nil, err
	}
	if *c.apiFlag != "" {
		cfg.APIURL = *c.apiFlag
	}
	if *c.outputFlag != "" {
		if err := checkOutput(*c.outputFlag); err != nil {
			return nil, err
		}
		cfg.Output = *c.outputFlag
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	c.cfg = &cfg
	return c.cfg, nil
}

func (c *commandContext) client() (*client.Client, error) {
	if c.api != nil {
		return c.api, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	api, err := client.New(cfg.APIURL, client.WithSessionStore(client.NewFileStore(cfg.SessionFile)))
	if err != nil {
		return nil, err
	}
	c.api = api
	return api, nil
}
