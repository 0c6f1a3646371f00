package cargo

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

const (
	workspaceCreationErrorTemplateConstant = "Failed to create temporary working folder: %w"
	workspaceRemovalErrorTemplateConstant  = "Failed to remove temporary working folder %s: %w"
	workspaceCreatedMessageConstant        = "temporary working folder created"
	workspaceRemovedMessageConstant        = "temporary working folder removed"
	logFieldWorkspacePathConstant          = "tempdir_path"
)

// TemporaryWorkspace is a directory owned by the current process until Close.
type TemporaryWorkspace struct {
	path   string
	logger *zap.Logger
	closed bool
}

// NewTemporaryWorkspace creates a fresh directory under root (os.TempDir when empty).
func NewTemporaryWorkspace(logger *zap.Logger, root string, pattern string) (*TemporaryWorkspace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	directoryPath, creationError := os.MkdirTemp(root, pattern)
	if creationError != nil {
		return nil, fmt.Errorf(workspaceCreationErrorTemplateConstant, creationError)
	}
	logger.Debug(workspaceCreatedMessageConstant, zap.String(logFieldWorkspacePathConstant, directoryPath))
	return &TemporaryWorkspace{path: directoryPath, logger: logger}, nil
}

// Path returns the workspace directory.
func (workspace *TemporaryWorkspace) Path() string {
	return workspace.path
}

// Close removes the workspace and everything in it. Repeated calls are no-ops.
func (workspace *TemporaryWorkspace) Close() error {
	if workspace == nil || workspace.closed {
		return nil
	}
	workspace.closed = true
	if removalError := os.RemoveAll(workspace.path); removalError != nil {
		return fmt.Errorf(workspaceRemovalErrorTemplateConstant, workspace.path, removalError)
	}
	workspace.logger.Debug(workspaceRemovedMessageConstant, zap.String(logFieldWorkspacePathConstant, workspace.path))
	return nil
}
