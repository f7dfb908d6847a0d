package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/memohai/bucketlink/cmd/bucketlink/modules"
	"github.com/memohai/bucketlink/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvConfigPath, config.EnvBotToken, config.EnvAccessKey, config.EnvSecretKey,
		config.EnvBucket, config.EnvRegion, config.EnvLogLevel, config.EnvLogFormat,
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

const storageConfig = `
[log]
level = "error"

[storage]
access_key = "AK"
secret_key = "SK"
bucket = "media"
region = "us-east-1"
`

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bucketlink ")
}

func TestLinkPermanent(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, storageConfig)

	out, err := execute(t, "--config", path, "link", "--permanent", "docs/report 2024.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.us-east-1.wasabisys.com/media/docs/report 2024.pdf\n", out)
}

func TestLinkRequiresKey(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "--config", writeConfig(t, storageConfig), "link")
	assert.Error(t, err)
}

func TestStorageCommandsRejectIncompleteConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[storage]\nregion = \"us-east-1\"\n")

	_, err := execute(t, "--config", path, "files")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.bucket")
}

func TestConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, storageConfig)
	t.Setenv(config.EnvConfigPath, path)

	out, err := execute(t, "link", "--permanent", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.us-east-1.wasabisys.com/media/a.txt\n", out)
}

func TestFilesCommandListsKeys(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/media", r.URL.Path)
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>media</Name>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>a.txt</Key><Size>1</Size></Contents>
  <Contents><Key>dir/b_c.png</Key><Size>2</Size></Contents>
</ListBucketResult>`)
	}))
	defer srv.Close()

	path := writeConfig(t, storageConfig+fmt.Sprintf("endpoint = %q\n", srv.URL))
	out, err := execute(t, "--config", path, "files")
	require.NoError(t, err)
	assert.Equal(t, "a.txt\ndir/b_c.png\n", out)
}

func TestServeRejectsMissingToken(t *testing.T) {
	clearEnv(t)
	app := newApp(writeConfig(t, storageConfig))
	err := app.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.bot_token")
}

func TestModulesGraphIsComplete(t *testing.T) {
	clearEnv(t)
	err := fx.ValidateApp(
		fx.Supply(modules.Options{ConfigPath: writeConfig(t, storageConfig)}),
		modules.InfraModule,
		modules.StorageModule,
		modules.BotModule,
		modules.ServerModule,
		fx.NopLogger,
	)
	assert.NoError(t, err)
}
