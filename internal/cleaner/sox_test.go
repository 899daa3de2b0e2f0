package cleaner

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/forvodl/internal/testutil"
)

// fakeSox records invocations and fakes the files sox would write
type fakeSox struct {
	calls          [][]string
	failNoiseprof  bool
	failProcessing bool
}

func (f *fakeSox) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))

	if len(args) > 1 && args[1] == "-n" {
		if f.failNoiseprof {
			return []byte("sox FAIL trim: Position 1 is behind the following position"), errors.New("exit status 2")
		}
		return nil, os.WriteFile(args[len(args)-1], []byte("noise profile"), 0644)
	}

	if f.failProcessing {
		return []byte("sox FAIL formats: can't open input file"), errors.New("exit status 2")
	}
	return nil, os.WriteFile(args[1], []byte("cleaned"), 0644)
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestSox(t *testing.T, fake *fakeSox) (*Sox, *SoxConfig) {
	t.Helper()

	store, _ := openTestStore(t)
	config := DefaultSoxConfig()
	config.ProfileDir = filepath.Join(t.TempDir(), "profiles")

	return newSox(config, store, fake.run, quietLogger()), config
}

func TestDefaultSoxConfig(t *testing.T) {
	config := DefaultSoxConfig()

	if config.SampleSeconds != 0.3 {
		t.Errorf("Expected sample of 0.3s, got %v", config.SampleSeconds)
	}
	if config.Suffix != "_clean" {
		t.Errorf("Expected suffix '_clean', got %q", config.Suffix)
	}
	if !strings.HasSuffix(config.ProfileDir, "forvodl") {
		t.Errorf("Unexpected profile dir %q", config.ProfileDir)
	}
}

func TestCleanedName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"casa.mp3", "casa_clean.mp3"},
		{"/tmp/dir/casa.mp3", "/tmp/dir/casa_clean.mp3"},
		{"ice cream.mp3", "ice cream_clean.mp3"},
		{"noext", "noext_clean"},
	}

	for _, tt := range tests {
		if got := CleanedName(tt.in, "_clean"); got != tt.want {
			t.Errorf("CleanedName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSox_CleanWithExistingProfile(t *testing.T) {
	fake := &fakeSox{}
	sox, _ := newTestSox(t, fake)
	input := filepath.Join(t.TempDir(), "casa.mp3")
	testutil.CreateTestFile(t, input, []byte("raw"))

	output, profile, err := sox.Clean(context.Background(), input, "bob", "/profiles/bob.prof")
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if profile != "/profiles/bob.prof" {
		t.Errorf("Expected the given profile back, got %q", profile)
	}
	if output != strings.TrimSuffix(input, ".mp3")+"_clean.mp3" {
		t.Errorf("Unexpected output %q", output)
	}
	testutil.AssertFileContent(t, output, []byte("cleaned"))

	if len(fake.calls) != 1 {
		t.Fatalf("Expected a single sox call, got %d", len(fake.calls))
	}
	cmd := strings.Join(fake.calls[0], " ")
	if !strings.Contains(cmd, "noisered /profiles/bob.prof 0.21") {
		t.Errorf("Expected noisered with profile, got %q", cmd)
	}
	if !strings.Contains(cmd, "norm -1") || strings.Count(cmd, "reverse") != 2 {
		t.Errorf("Expected normalization and silence trimming, got %q", cmd)
	}
}

func TestSox_CleanCreatesProfile(t *testing.T) {
	fake := &fakeSox{}
	sox, config := newTestSox(t, fake)
	ctx := context.Background()
	input := filepath.Join(t.TempDir(), "casa.mp3")

	_, profile, err := sox.Clean(ctx, input, "bob.smith", "")
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	wantProfile := NoiseProfile(filepath.Join(config.ProfileDir, "bob_smith.prof"))
	if profile != wantProfile {
		t.Errorf("Expected new profile %q, got %q", wantProfile, profile)
	}
	testutil.AssertFileExists(t, string(profile))

	if len(fake.calls) != 2 {
		t.Fatalf("Expected noiseprof and processing calls, got %d", len(fake.calls))
	}
	if !strings.Contains(strings.Join(fake.calls[0], " "), "trim 0 0.3 noiseprof") {
		t.Errorf("Unexpected sampling call %v", fake.calls[0])
	}

	// The next lookup finds it
	found, err := sox.FindNoiseProfile(ctx, "bob.smith")
	if err != nil {
		t.Fatalf("FindNoiseProfile failed: %v", err)
	}
	if found != wantProfile {
		t.Errorf("Expected registered profile %q, got %q", wantProfile, found)
	}
}

func TestSox_CleanProfileCreationAborted(t *testing.T) {
	fake := &fakeSox{failNoiseprof: true}
	sox, config := newTestSox(t, fake)
	ctx := context.Background()
	input := filepath.Join(t.TempDir(), "casa.mp3")

	output, profile, err := sox.Clean(ctx, input, "bob", "")
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if profile != "" {
		t.Errorf("Expected no profile, got %q", profile)
	}
	testutil.AssertFileExists(t, output)
	testutil.AssertFileNotExists(t, filepath.Join(config.ProfileDir, "bob.prof"))

	cmd := strings.Join(fake.calls[len(fake.calls)-1], " ")
	if strings.Contains(cmd, "noisered") {
		t.Errorf("Expected no noisered without a profile, got %q", cmd)
	}

	found, _ := sox.FindNoiseProfile(ctx, "bob")
	if found != "" {
		t.Errorf("Expected nothing registered, got %q", found)
	}
}

func TestSox_CleanFailure(t *testing.T) {
	sox, _ := newTestSox(t, &fakeSox{failProcessing: true})

	_, _, err := sox.Clean(context.Background(), "casa.mp3", "bob", "/profiles/bob.prof")
	if err == nil {
		t.Fatal("Expected error when sox fails")
	}
	if !strings.Contains(err.Error(), "can't open input file") {
		t.Errorf("Expected sox output in error, got %v", err)
	}
}

func TestSox_FindNoiseProfile(t *testing.T) {
	sox, config := newTestSox(t, &fakeSox{})
	ctx := context.Background()

	profile, err := sox.FindNoiseProfile(ctx, "bob")
	if err != nil {
		t.Fatalf("FindNoiseProfile failed: %v", err)
	}
	if profile != "" {
		t.Errorf("Expected no profile, got %q", profile)
	}

	path := filepath.Join(config.ProfileDir, "bob.prof")
	testutil.CreateTestFile(t, path, []byte("profile"))
	if err := sox.store.Save(ctx, "bob", NoiseProfile(path)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	profile, err = sox.FindNoiseProfile(ctx, "bob")
	if err != nil {
		t.Fatalf("FindNoiseProfile failed: %v", err)
	}
	if string(profile) != path {
		t.Errorf("Expected %q, got %q", path, profile)
	}
}

func TestSox_FindNoiseProfileMissingFile(t *testing.T) {
	sox, _ := newTestSox(t, &fakeSox{})
	ctx := context.Background()

	if err := sox.store.Save(ctx, "bob", "/nonexistent/bob.prof"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	profile, err := sox.FindNoiseProfile(ctx, "bob")
	if err != nil {
		t.Fatalf("FindNoiseProfile failed: %v", err)
	}
	if profile != "" {
		t.Errorf("Expected stale profile to be dropped, got %q", profile)
	}

	stored, _ := sox.store.Lookup(ctx, "bob")
	if stored != "" {
		t.Errorf("Expected stale profile to be forgotten, got %q", stored)
	}
}

func TestNewSox_NotInstalled(t *testing.T) {
	if checkSoxInstalled() == nil {
		t.Skip("sox is installed")
	}

	if _, err := NewSox(nil, quietLogger()); err == nil {
		t.Error("Expected error when sox is missing")
	}
}
