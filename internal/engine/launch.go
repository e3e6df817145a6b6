package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/bianoble/mcstarter/internal/config"
	"github.com/bianoble/mcstarter/internal/lock"
	"github.com/bianoble/mcstarter/internal/target"
	"github.com/mattn/go-shellwords"
)

// DefaultCommand runs the core when launch.command is unset.
const DefaultCommand = "java"

// EnvJVMArgs holds extra arguments placed between launch.pre and -jar.
const EnvJVMArgs = "MCSTARTER_JVM_ARGS"

// Launch is a resolved server command line.
type Launch struct {
	Command  string
	Args     []string
	Dir      string // working directory, the target root
	CoreFile string // target-relative core jar
}

// LaunchPlan assembles the command that starts the server staged in
// targetDir: <command> <pre...> <extra...> -jar <core file> <post...>.
// extra is split with shell quoting rules. The core jar must already be staged.
func LaunchPlan(cfg *config.Config, lf *lock.Lockfile, targetDir, extra string) (*Launch, error) {
	digest, err := lf.Get(config.CoreLockName)
	if err != nil {
		return nil, err
	}
	core := target.CoreFileName(cfg.Core, digest)
	if info, err := os.Stat(filepath.Join(targetDir, core)); err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("core %s is not staged in %s; run 'mcstarter build' first", core, targetDir)
	}

	extraArgs, err := shellwords.Parse(extra)
	if err != nil {
		return nil, fmt.Errorf("could not parse '%s' into arguments: %w", extra, err)
	}

	cmd := cfg.Launch.Command
	if cmd == "" {
		cmd = DefaultCommand
	}

	args := make([]string, 0, len(cfg.Launch.Pre)+len(extraArgs)+len(cfg.Launch.Post)+2)
	args = append(args, cfg.Launch.Pre...)
	args = append(args, extraArgs...)
	args = append(args, "-jar", core)
	args = append(args, cfg.Launch.Post...)

	return &Launch{Command: cmd, Args: args, Dir: targetDir, CoreFile: core}, nil
}

// Cmd returns an exec.Cmd running the plan in its target directory.
func (l *Launch) Cmd(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, l.Command, l.Args...)
	cmd.Dir = l.Dir
	return cmd
}
