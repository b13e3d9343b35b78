package consts

import (
	"os"
	"path/filepath"
)

const (
	EdisonDirName  = ".edison"
	ConfigFileName = "config.yaml"
	SkillsDirName  = "skills"
)

func EdisonHomeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, EdisonDirName)
}

func DefaultConfigPath() string {
	return filepath.Join(EdisonHomeDir(), ConfigFileName)
}

func DefaultSkillsDir() string {
	// A skills directory next to the binary's working directory wins over
	// the home one, matching a source checkout layout.
	if _, err := os.Stat(SkillsDirName); err == nil {
		return SkillsDirName
	}
	return filepath.Join(EdisonHomeDir(), SkillsDirName)
}
