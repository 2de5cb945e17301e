package executor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/docker/pkg/stdcopy"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stitchprep/stitchprep/internal/ir"
	"github.com/stitchprep/stitchprep/internal/logging"
)

const (
	defaultImage   = "python:3.11-slim"
	defaultWorkDir = "/workspace"
)

// dockerAPI is the subset of the Docker Engine client used by Docker.
type dockerAPI interface {
	ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *v1.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerExecCreate(ctx context.Context, containerID string, options container.ExecOptions) (types.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config container.ExecAttachOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
	Close() error
}

// Docker runs commands inside a container. It either attaches to an existing
// container or creates a throwaway one from an image with the project
// directory mounted at the working directory.
type Docker struct {
	client  dockerAPI
	id      string
	workDir string
	owned   bool // container was created by us and is removed on Close
	keep    bool
}

// NewDocker connects to the daemon configured in the environment and
// prepares the container described by target.
func NewDocker(ctx context.Context, target *ir.DockerTarget, projectDir string) (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	d, err := newDockerWithClient(ctx, cli, target, projectDir)
	if err != nil {
		cli.Close()
		return nil, err
	}
	return d, nil
}

func newDockerWithClient(ctx context.Context, api dockerAPI, target *ir.DockerTarget, projectDir string) (*Docker, error) {
	d := &Docker{
		client:  api,
		workDir: target.WorkDir,
		keep:    target.Keep,
	}
	if d.workDir == "" {
		d.workDir = defaultWorkDir
	}

	if target.Container != "" {
		d.id = target.Container
		logging.Debug("using existing container", "container", d.id)
		return d, nil
	}

	if err := d.createContainer(ctx, target, projectDir); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Docker) createContainer(ctx context.Context, target *ir.DockerTarget, projectDir string) error {
	ref := target.Image
	if ref == "" {
		ref = defaultImage
	}

	reader, err := d.client.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	// The pull only completes once the progress stream is drained; failures
	// arrive as error messages inside it.
	err = jsonmessage.DisplayJSONMessagesStream(reader, io.Discard, 0, false, nil)
	reader.Close()
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	logging.Debug("pulled image", "image", ref)

	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory: %w", err)
	}

	config := &container.Config{
		Image:      ref,
		Cmd:        []string{"sleep", "infinity"},
		WorkingDir: d.workDir,
		Labels:     map[string]string{"io.stitchprep.managed": "true"},
	}
	hostConfig := &container.HostConfig{
		Binds: []string{fmt.Sprintf("%s:%s", absDir, d.workDir)},
	}

	platform := &v1.Platform{}
	if target.Arch != "" {
		platform.OS = "linux"
		platform.Architecture = target.Arch
	}

	resp, err := d.client.ContainerCreate(ctx, config, hostConfig, &network.NetworkingConfig{}, platform, "")
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	d.id = resp.ID
	d.owned = true

	if err := d.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		d.remove(context.WithoutCancel(ctx))
		return fmt.Errorf("failed to start container: %w", err)
	}
	logging.Debug("started container", "container", shortID(d.id), "image", ref)
	return nil
}

func (d *Docker) Exec(ctx context.Context, req *Request) (int, error) {
	if len(req.Command) == 0 {
		return -1, fmt.Errorf("empty command")
	}

	created, err := d.client.ContainerExecCreate(ctx, d.id, container.ExecOptions{
		Cmd:          req.Command,
		Env:          envList(mergeEnv(defaultEnv, req.Env)),
		WorkingDir:   d.workDir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return -1, fmt.Errorf("failed to create exec in container %s: %w", shortID(d.id), err)
	}

	attach, err := d.client.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return -1, fmt.Errorf("failed to attach to exec %s: %w", shortID(created.ID), err)
	}
	defer attach.Close()

	if _, err := stdcopy.StdCopy(writerOr(req.Stdout), writerOr(req.Stderr), attach.Reader); err != nil {
		return -1, fmt.Errorf("failed to read exec output: %w", err)
	}

	inspect, err := d.client.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return -1, fmt.Errorf("failed to inspect exec %s: %w", shortID(created.ID), err)
	}
	return inspect.ExitCode, nil
}

// Close removes the container if this executor created it.
func (d *Docker) Close() error {
	var err error
	if d.owned && !d.keep {
		err = d.remove(context.Background())
	}
	if cerr := d.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func (d *Docker) remove(ctx context.Context) error {
	timeout := 10 // seconds
	_ = d.client.ContainerStop(ctx, d.id, container.StopOptions{Timeout: &timeout})
	if err := d.client.ContainerRemove(ctx, d.id, container.RemoveOptions{Force: true}); err != nil {
		if !client.IsErrNotFound(err) {
			return fmt.Errorf("failed to remove container: %w", err)
		}
	}
	logging.Debug("removed container", "container", shortID(d.id))
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
