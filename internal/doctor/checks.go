package doctor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/octoshim/octoshim/internal/config"
	"github.com/octoshim/octoshim/internal/paths"
)

// maxSecureFilePerm is the maximum secure permission for plain config files (-rw-r--r--).
const maxSecureFilePerm os.FileMode = 0644

// maxSecretFilePerm is the maximum secure permission for credential-bearing
// files such as the native CLI's config (-rw-------).
const maxSecretFilePerm os.FileMode = 0600

// configFileNames are the config file names the shim recognizes, in the
// order the loader tries them.
var configFileNames = []string{"config.yaml", "config.yml", "config.toml"}

// configSearchDirs returns the directories searched for the shim's config,
// mirroring the loader: $OCTOSHIM_CONFIG_DIR overrides everything,
// otherwise the working directory then the XDG config dir.
func configSearchDirs() []string {
	if dir := os.Getenv("OCTOSHIM_CONFIG_DIR"); dir != "" {
		return []string{dir}
	}
	return []string{".", paths.ConfigDir()}
}

// PathPermissionCheck validates permissions on the shim's own config paths
// and on the native CLI's config, which stores credentials.
type PathPermissionCheck struct {
	PermissionFixer

	provider string
}

var _ Check = (*PathPermissionCheck)(nil)
var _ Fixer = (*PathPermissionCheck)(nil)

// NewPathPermissionCheck creates a path permission check for the given provider.
func NewPathPermissionCheck(provider string) *PathPermissionCheck {
	return &PathPermissionCheck{provider: provider}
}

// Name returns the unique identifier for this check.
func (c *PathPermissionCheck) Name() string {
	return "path-permissions"
}

// Category returns the grouping for this check.
func (c *PathPermissionCheck) Category() string {
	return "filesystem"
}

// Run executes the path and permission diagnostic check.
func (c *PathPermissionCheck) Run() *CheckResult {
	var issues []pathIssue
	var checked int

	// The shim's own config. The working directory is searched for config
	// files but its permissions are not ours to police.
	for _, dir := range configSearchDirs() {
		if dir != "." {
			issues = append(issues, c.checkDirectory(dir, "octoshim")...)
			checked++
		}
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			issues = append(issues, c.checkFile(path, "octoshim", false)...)
			checked++
		}
	}

	// The native CLI keeps tokens in its config file, so it gets the
	// stricter permission bound.
	if dir := paths.NativeConfigDir(c.provider); dir != "" {
		issues = append(issues, c.checkDirectory(dir, c.provider)...)
		checked++
	}
	if file := paths.NativeConfigFile(c.provider); file != "" {
		issues = append(issues, c.checkFile(file, c.provider, true)...)
		checked++
	}

	c.setIssues(issues)
	return c.buildResult(issues, checked)
}

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Owner       string // "octoshim" or the provider whose CLI owns the path
	Type        string // "file" or "directory"
	Problem     string
	Severity    Severity
	Permissions string // octal representation if available
	Fixable     bool
	FixHint     string
	TargetPerm  os.FileMode // permission a fix should apply, 0 for the type default
}

// checkFile validates a config file path and permissions. Files flagged as
// secret are held to the 0600 bound instead of 0644.
func (c *PathPermissionCheck) checkFile(path, owner string, secret bool) []pathIssue {
	var issues []pathIssue

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		// A missing file is not an error, it just isn't configured yet.
		return nil
	}
	if err != nil {
		issues = append(issues, pathIssue{
			Path:     path,
			Owner:    owner,
			Type:     "file",
			Problem:  fmt.Sprintf("cannot stat file: %v", err),
			Severity: SeverityError,
		})
		return issues
	}

	f, err := os.Open(path)
	if err != nil {
		issues = append(issues, pathIssue{
			Path:        path,
			Owner:       owner,
			Type:        "file",
			Problem:     "file is not readable",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod 644 " + path,
		})
		return issues
	}
	f.Close()

	// Unix permission semantics don't apply on Windows.
	if runtime.GOOS != "windows" {
		issues = append(issues, c.checkFilePermissions(path, owner, info.Mode(), secret)...)
	}

	return issues
}

// checkDirectory validates a config directory path and permissions.
func (c *PathPermissionCheck) checkDirectory(path, owner string) []pathIssue {
	var issues []pathIssue

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		issues = append(issues, pathIssue{
			Path:     path,
			Owner:    owner,
			Type:     "directory",
			Problem:  fmt.Sprintf("cannot stat directory: %v", err),
			Severity: SeverityError,
		})
		return issues
	}

	if !info.IsDir() {
		issues = append(issues, pathIssue{
			Path:     path,
			Owner:    owner,
			Type:     "directory",
			Problem:  "expected directory but found file",
			Severity: SeverityError,
		})
		return issues
	}

	writable, err := c.isDirectoryWritable(path)
	if err != nil || !writable {
		issues = append(issues, pathIssue{
			Path:        path,
			Owner:       owner,
			Type:        "directory",
			Problem:     "directory is not writable",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+w " + path,
		})
	}

	if runtime.GOOS != "windows" {
		issues = append(issues, c.checkDirectoryPermissions(path, owner, info.Mode())...)
	}

	return issues
}

// checkFilePermissions validates file permissions for security concerns.
func (c *PathPermissionCheck) checkFilePermissions(path, owner string, mode os.FileMode, secret bool) []pathIssue {
	var issues []pathIssue
	perm := mode.Perm()

	target := maxSecureFilePerm
	if secret {
		target = maxSecretFilePerm
	}
	hint := fmt.Sprintf("chmod %o %s", target, path)

	if perm&0002 != 0 {
		issues = append(issues, pathIssue{
			Path:        path,
			Owner:       owner,
			Type:        "file",
			Problem:     "file is world-writable",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(mode),
			Fixable:     true,
			FixHint:     hint,
			TargetPerm:  target,
		})
		return issues
	}

	if secret && perm > maxSecretFilePerm {
		issues = append(issues, pathIssue{
			Path:        path,
			Owner:       owner,
			Type:        "file",
			Problem:     fmt.Sprintf("credential file is readable by other users (mode %s, expected %s or stricter)", formatPermissions(mode), formatOctal(maxSecretFilePerm)),
			Severity:    SeverityWarning,
			Permissions: formatPermissions(mode),
			Fixable:     true,
			FixHint:     hint,
			TargetPerm:  target,
		})
	}

	return issues
}

// checkDirectoryPermissions validates directory permissions for security concerns.
func (c *PathPermissionCheck) checkDirectoryPermissions(path, owner string, mode os.FileMode) []pathIssue {
	var issues []pathIssue
	perm := mode.Perm()

	if perm&0002 != 0 {
		issues = append(issues, pathIssue{
			Path:        path,
			Owner:       owner,
			Type:        "directory",
			Problem:     "directory is world-writable",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(mode),
			Fixable:     true,
			FixHint:     "chmod 755 " + path,
		})
	}

	return issues
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func (c *PathPermissionCheck) isDirectoryWritable(path string) (bool, error) {
	tmpFile, err := os.CreateTemp(path, ".octoshim-doctor-*")
	if err != nil {
		return false, err
	}

	tmpPath := tmpFile.Name()
	tmpFile.Close()
	os.Remove(tmpPath)

	return true, nil
}

// buildResult constructs the final CheckResult from accumulated issues.
func (c *PathPermissionCheck) buildResult(issues []pathIssue, checked int) *CheckResult {
	if len(issues) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("all %d paths have valid permissions", checked),
		}
	}

	var hasError, hasWarning bool
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			hasError = true
		}
		if issue.Severity == SeverityWarning {
			hasWarning = true
		}
	}

	highestSeverity := SeverityPass
	if hasError {
		highestSeverity = SeverityError
	} else if hasWarning {
		highestSeverity = SeverityWarning
	}

	details := make(map[string]any)
	details["checked_paths"] = checked
	details["issue_count"] = len(issues)

	issueDetails := make([]map[string]any, 0, len(issues))
	for _, issue := range issues {
		issueMap := map[string]any{
			"path":     issue.Path,
			"owner":    issue.Owner,
			"type":     issue.Type,
			"problem":  issue.Problem,
			"severity": issue.Severity.String(),
		}
		if issue.Permissions != "" {
			issueMap["permissions"] = issue.Permissions
		}
		if issue.FixHint != "" {
			issueMap["fix_hint"] = issue.FixHint
		}
		issueDetails = append(issueDetails, issueMap)
	}
	details["issues"] = issueDetails

	fixable := false
	var fixHints []string
	for _, issue := range issues {
		if issue.Fixable {
			fixable = true
			if issue.FixHint != "" {
				fixHints = append(fixHints, issue.FixHint)
			}
		}
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   highestSeverity,
		Message:  fmt.Sprintf("found %d permission issue(s) across %d paths", len(issues), checked),
		Details:  details,
		Fixable:  fixable,
	}

	if len(fixHints) > 0 {
		result.FixHint = strings.Join(fixHints, "; ")
	}

	return result
}

// formatPermissions returns a human-readable permission string (e.g., "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}

// formatOctal returns the octal representation of a file mode.
func formatOctal(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode)
}

// ConfigSyntaxCheck validates configuration file syntax (YAML/TOML parsing)
// for the shim's config candidates and the native CLI's config file.
type ConfigSyntaxCheck struct {
	provider string
}

var _ Check = (*ConfigSyntaxCheck)(nil)

// NewConfigSyntaxCheck creates a syntax check for the given provider.
func NewConfigSyntaxCheck(provider string) *ConfigSyntaxCheck {
	return &ConfigSyntaxCheck{provider: provider}
}

// Name returns the unique identifier for this check.
func (c *ConfigSyntaxCheck) Name() string {
	return "config-syntax"
}

// Category returns the grouping for this check.
func (c *ConfigSyntaxCheck) Category() string {
	return "config"
}

// syntaxFileResult represents the validation result for a single file.
type syntaxFileResult struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Run executes the syntax validation check across all config candidates.
func (c *ConfigSyntaxCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Details:  make(map[string]any),
	}

	var fileResults []syntaxFileResult
	var errorCount, passCount, infoCount int

	tally := func(fr syntaxFileResult) {
		fileResults = append(fileResults, fr)
		switch fr.Status {
		case "pass":
			passCount++
		case "error":
			errorCount++
		case "info":
			infoCount++
		}
	}

	for _, dir := range configSearchDirs() {
		for _, name := range configFileNames {
			tally(c.validateFile(filepath.Join(dir, name)))
		}
	}
	if native := paths.NativeConfigFile(c.provider); native != "" {
		tally(c.validateFile(native))
	}

	result.Details["files"] = fileResults
	result.Details["checked"] = len(fileResults)
	result.Details["passed"] = passCount
	result.Details["errors"] = errorCount
	result.Details["missing"] = infoCount

	switch {
	case errorCount > 0:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d config file(s) have syntax errors", errorCount)
		result.FixHint = "review the error details and fix the syntax in each file"
	case passCount > 0:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("%d config file(s) validated successfully", passCount)
	default:
		result.Status = SeverityInfo
		result.Message = "no config files found to validate"
	}

	return result
}

// validateFile checks if a file is syntactically valid.
func (c *ConfigSyntaxCheck) validateFile(filePath string) syntaxFileResult {
	fr := syntaxFileResult{Path: filePath}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fr.Status = "info"
			fr.Message = "file does not exist (not configured)"
			return fr
		}
		if errors.Is(err, os.ErrPermission) {
			fr.Status = "error"
			fr.Message = fmt.Sprintf("permission denied: %v", err)
			return fr
		}
		fr.Status = "error"
		fr.Message = fmt.Sprintf("read error: %v", err)
		return fr
	}

	// Empty files are valid (no content to parse)
	if len(data) == 0 {
		fr.Status = "pass"
		fr.Message = "empty file"
		return fr
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".toml":
		fr = c.validateTOML(data, fr)
	default:
		// .yaml, .yml, and glab's extensionless variants are all YAML.
		fr = c.validateYAML(data, fr)
	}

	return fr
}

// validateYAML validates YAML syntax.
func (c *ConfigSyntaxCheck) validateYAML(data []byte, fr syntaxFileResult) syntaxFileResult {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		fr.Status = "error"
		fr.Message = formatYAMLError(err)
		return fr
	}
	fr.Status = "pass"
	return fr
}

// validateTOML validates TOML syntax and returns position info on errors.
func (c *ConfigSyntaxCheck) validateTOML(data []byte, fr syntaxFileResult) syntaxFileResult {
	var v any
	if err := toml.Unmarshal(data, &v); err != nil {
		fr.Status = "error"
		fr.Message = formatTOMLError(err)
		return fr
	}
	fr.Status = "pass"
	return fr
}

// formatYAMLError normalizes yaml.v3 error text. The parser embeds line
// information in its own messages, so there is no offset to translate.
func formatYAMLError(err error) string {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return "YAML type error: " + strings.Join(typeErr.Errors, "; ")
	}
	return "YAML syntax error: " + strings.TrimPrefix(err.Error(), "yaml: ")
}

// formatTOMLError extracts position information from TOML decode errors.
func formatTOMLError(err error) string {
	// go-toml/v2 DecodeError includes line/column via Position() method
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("TOML syntax error at line %d, column %d: %s",
			row, col, decodeErr.Error())
	}

	return fmt.Sprintf("TOML error: %v", err)
}

// ConfigLoadCheck loads the shim's configuration the same way startup does
// and reports the resolved settings.
type ConfigLoadCheck struct {
	path string
}

var _ Check = (*ConfigLoadCheck)(nil)

// NewConfigLoadCheck creates a config load check. An explicit path pins the
// config file; an empty path uses the normal search locations.
func NewConfigLoadCheck(path string) *ConfigLoadCheck {
	return &ConfigLoadCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *ConfigLoadCheck) Name() string {
	return "config-load"
}

// Category returns the grouping for this check.
func (c *ConfigLoadCheck) Category() string {
	return "config"
}

// Run loads and validates the configuration.
func (c *ConfigLoadCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  make(map[string]any),
	}

	config.Init()
	cfg, err := config.Load(c.path)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("configuration failed to load: %v", err)
		result.FixHint = "fix the reported setting or remove it to fall back to defaults"
		return result
	}

	result.Details["provider"] = cfg.Provider
	result.Details["passthrough"] = cfg.Passthrough
	if cfg.CLITool != "" {
		result.Details["cli_tool"] = cfg.CLITool
	}
	if cfg.Instance != "" {
		result.Details["instance"] = cfg.Instance
	}
	if file := config.FileUsed(); file != "" {
		result.Details["file"] = file
	}

	instance := cfg.Instance
	if instance == "" {
		instance = "default"
	}
	result.Status = SeverityPass
	result.Message = fmt.Sprintf("provider %s, instance %s", cfg.Provider, instance)
	return result
}

// NativeCLICheck verifies the native CLI the shim drives is installed and
// answers a version probe.
type NativeCLICheck struct {
	provider string
	cliTool  string
}

var _ Check = (*NativeCLICheck)(nil)

// NewNativeCLICheck creates a native CLI check. A non-empty cliTool
// overrides the provider's default binary, mirroring the cli_tool setting.
func NewNativeCLICheck(provider, cliTool string) *NativeCLICheck {
	return &NativeCLICheck{provider: provider, cliTool: cliTool}
}

// Name returns the unique identifier for this check.
func (c *NativeCLICheck) Name() string {
	return "native-cli"
}

// Category returns the grouping for this check.
func (c *NativeCLICheck) Category() string {
	return "native"
}

// Run locates the native CLI and probes its version.
func (c *NativeCLICheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  make(map[string]any),
	}

	binary := c.cliTool
	if binary == "" {
		binary = paths.NativeBinary(c.provider)
	}
	if binary == "" {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("unknown provider %q and no cli_tool override", c.provider)
		return result
	}
	result.Details["binary"] = binary

	path, err := exec.LookPath(binary)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%s not found in PATH", binary)
		result.FixHint = paths.InstallHint(c.provider)
		return result
	}
	result.Details["path"] = path

	out, err := exec.Command(path, "version").Output()
	if err != nil {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%s found at %s but the version probe failed: %v", binary, path, err)
		return result
	}

	version := firstLine(string(out))
	result.Details["version"] = version
	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%s at %s (%s)", binary, path, version)
	return result
}

// firstLine returns the first non-empty line of command output, trimmed.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// relevantEnvVars are the variables that influence the shim or the native
// CLIs it drives.
var relevantEnvVars = []string{
	"OCTOSHIM_PROVIDER",
	"OCTOSHIM_CLI_TOOL",
	"OCTOSHIM_INSTANCE",
	"OCTOSHIM_PASSTHROUGH",
	"OCTOSHIM_CONFIG_DIR",
	"OCTOSHIM_DEBUG",
	"OCTOSHIM_LOG_FILE",
	"GITLAB_HOST",
	"GITLAB_TOKEN",
	"GH_HOST",
	"GH_TOKEN",
	"GITHUB_TOKEN",
	"GLAB_CONFIG_DIR",
	"GH_CONFIG_DIR",
	"NO_COLOR",
}

// EnvCheck reports the environment variables that influence the shim and
// flags host settings that disagree with each other.
type EnvCheck struct{}

var _ Check = (*EnvCheck)(nil)

// NewEnvCheck creates an environment check.
func NewEnvCheck() *EnvCheck {
	return &EnvCheck{}
}

// Name returns the unique identifier for this check.
func (c *EnvCheck) Name() string {
	return "environment"
}

// Category returns the grouping for this check.
func (c *EnvCheck) Category() string {
	return "environment"
}

// Run inspects the relevant environment variables.
func (c *EnvCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  make(map[string]any),
	}

	set := make(map[string]string)
	for _, name := range relevantEnvVars {
		if v := os.Getenv(name); v != "" {
			set[name] = v
		}
	}

	result.Details["count"] = len(set)
	if len(set) > 0 {
		result.Details["set"] = MaskSecrets(set)
	}

	// OCTOSHIM_INSTANCE wins over the native host variables at run time,
	// so a disagreement usually means the user expects the wrong host.
	var conflicts []string
	if instance := set["OCTOSHIM_INSTANCE"]; instance != "" {
		for _, host := range []string{"GITLAB_HOST", "GH_HOST"} {
			if v := set[host]; v != "" && !looseHostEqual(v, instance) {
				conflicts = append(conflicts, fmt.Sprintf("%s=%s disagrees with OCTOSHIM_INSTANCE=%s; the shim overrides %s for the native CLI", host, v, instance, host))
			}
		}
	}

	if len(conflicts) > 0 {
		result.Status = SeverityWarning
		result.Message = conflicts[0]
		if len(conflicts) > 1 {
			result.Message = fmt.Sprintf("%d conflicting host settings", len(conflicts))
		}
		result.Details["conflicts"] = conflicts
		return result
	}

	result.Status = SeverityPass
	if len(set) == 0 {
		result.Message = "no shim environment variables set"
	} else {
		result.Message = fmt.Sprintf("%d environment variable(s) set", len(set))
	}
	return result
}

// looseHostEqual compares two host settings ignoring scheme, trailing
// slashes, and case. It is a hint heuristic, not the run-time resolver.
func looseHostEqual(a, b string) bool {
	return looseHost(a) == looseHost(b)
}

func looseHost(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimRight(s, "/")
}
