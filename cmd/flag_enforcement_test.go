package cmd

import (
	"testing"

	"github.com/spf13/viper"
)

func TestGenerateRequiresApiKey(t *testing.T) {
	// Reset viper
	viper.Reset()

	viper.Set("phishnet_api_key", "")
	err := generateCmd.PreRunE(generateCmd, []string{})
	if err == nil {
		t.Error("Expected error when phishnet_api_key is missing, got nil")
	} else if err.Error() != "required flag(s) \"phishnet_api_key\" not set" {
		t.Errorf("Expected 'required flag(s) \"phishnet_api_key\" not set', got %v", err)
	}

	viper.Set("phishnet_api_key", "test-key")
	if err := generateCmd.PreRunE(generateCmd, []string{}); err != nil {
		t.Errorf("Expected nil when phishnet_api_key is set, got %v", err)
	}
}

func TestNotifyRequiresSendgrid(t *testing.T) {
	viper.Reset()

	viper.Set("from", "stats@example.com")
	err := notifyCmd.PreRunE(notifyCmd, []string{"fan@example.com"})
	if err == nil || err.Error() != "required flag(s) \"sendgrid_api_key\" not set" {
		t.Errorf("Expected sendgrid_api_key error, got %v", err)
	}

	viper.Set("sendgrid_api_key", "test-key")
	viper.Set("from", "")
	err = notifyCmd.PreRunE(notifyCmd, []string{"fan@example.com"})
	if err == nil || err.Error() != "required flag(s) \"from\" not set" {
		t.Errorf("Expected from error, got %v", err)
	}

	viper.Set("from", "stats@example.com")
	if err := notifyCmd.PreRunE(notifyCmd, []string{"fan@example.com"}); err != nil {
		t.Errorf("Expected nil when both are set, got %v", err)
	}
}
