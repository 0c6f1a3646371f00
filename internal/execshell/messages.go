package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	emptyStringConstant                     = ""
)

const (
	cargoNewSubcommandNameConstant     = "new"
	cargoPublishSubcommandNameConstant = "publish"
	cargoRegistryFlagConstant          = "--registry"
	cargoFlagPrefixConstant            = "-"
)

const (
	cargoNewStartTemplateConstant                = "Creating `%s` project in %s"
	cargoNewSuccessTemplateConstant              = "Created `%s` project in %s"
	cargoNewFailureTemplateConstant              = "Failed to create `%s` project in %s (exit code %d%s)"
	cargoNewExecutionFailureTemplateConstant     = "Unable to create `%s` project in %s: %s"
	cargoPublishStartTemplateConstant            = "Publishing %s to the %s registry"
	cargoPublishSuccessTemplateConstant          = "Published %s to the %s registry"
	cargoPublishFailureTemplateConstant          = "Failed to publish %s to the %s registry (exit code %d%s)"
	cargoPublishExecutionFailureTemplateConstant = "Unable to publish %s to the %s registry: %s"
	cargoDefaultRegistryLabelConstant            = "default"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage describes a command that exited with status zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage describes a command that exited with a non-zero status.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage describes a command that could not be run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandCargo {
		if message := formatter.describeCargoMessage(command, result, failure, stage); len(message) > 0 {
			return message
		}
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeCargoMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch formatter.argumentAtIndex(arguments, 0) {
	case cargoNewSubcommandNameConstant:
		projectName := formatter.ensureValue(formatter.lastPositionalArgument(arguments[1:]))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(cargoNewStartTemplateConstant, projectName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(cargoNewSuccessTemplateConstant, projectName, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(cargoNewFailureTemplateConstant, projectName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(cargoNewExecutionFailureTemplateConstant, projectName, workingDirectory, formatter.describeFailure(failure))
		}
	case cargoPublishSubcommandNameConstant:
		registryName := formatter.flagValue(arguments, cargoRegistryFlagConstant)
		if len(registryName) == 0 {
			registryName = cargoDefaultRegistryLabelConstant
		}
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(cargoPublishStartTemplateConstant, workingDirectory, registryName)
		case messageStageSuccess:
			return fmt.Sprintf(cargoPublishSuccessTemplateConstant, workingDirectory, registryName)
		case messageStageFailure:
			return fmt.Sprintf(cargoPublishFailureTemplateConstant, workingDirectory, registryName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(cargoPublishExecutionFailureTemplateConstant, workingDirectory, registryName, formatter.describeFailure(failure))
		}
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) lastPositionalArgument(arguments []string) string {
	for argumentIndex := len(arguments) - 1; argumentIndex >= 0; argumentIndex-- {
		argument := strings.TrimSpace(arguments[argumentIndex])
		if len(argument) == 0 || strings.HasPrefix(argument, cargoFlagPrefixConstant) {
			continue
		}
		return argument
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) flagValue(arguments []string, flagName string) string {
	for argumentIndex, argument := range arguments {
		if argument == flagName {
			return formatter.argumentAtIndex(arguments, argumentIndex+1)
		}
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}
