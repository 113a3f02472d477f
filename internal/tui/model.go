package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AoNovae/Git-Toolkit/internal/cloning"
	"github.com/AoNovae/Git-Toolkit/internal/gitlab"
)

const (
	projectListerFactoryMissingMessageConst = "project lister factory not configured"
	tokenInputPlaceholderConstant           = "personal access token (optional for public groups)"
	groupInputPlaceholderConstant           = "group name"
	directoryInputPlaceholderConstant       = "destination directory"
	tokenEchoCharacterConstant              = '•'
	titleTextConstant                       = "GitLab group cloner"
	credentialsHintTextConstant             = "tab: next field • enter: fetch projects • esc: quit"
	selectionHintTextConstant               = "space: toggle • a: all • n: none • enter: clone • esc: quit"
	reportHintTextConstant                  = "press any key to exit"
	fetchingTextTemplateConstant            = "%s Fetching projects of %q…"
	selectionTitleTemplateConstant          = "Projects of %q (%d selected)"
	cloningTextTemplateConstant             = "Cloning %d of %d: %s"
	reportLineSuccessTemplateConstant       = "  ✓ %s"
	reportLineFailureTemplateConstant       = "  ✗ %s (%s)"
	reportSummaryTemplateConstant           = "Cloned %d of %d repositories into %s"
	selectedMarkerConstant                  = "[x]"
	unselectedMarkerConstant                = "[ ]"
	cursorMarkerConstant                    = "> "
	noCursorMarkerConstant                  = "  "
	groupNameRequiredNoticeConstant         = "enter a group name"
	directoryRequiredNoticeConstant         = "enter a destination directory"
	noProjectsSelectedNoticeConstant        = "select at least one project"
	noProjectsFoundNoticeTemplateConstant   = "group %q has no projects"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	projectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

// ErrProjectListerFactoryNotConfigured indicates the interactive flow was built without a lister factory.
var ErrProjectListerFactoryNotConfigured = errors.New(projectListerFactoryMissingMessageConst)

// ProjectListerFactory builds a project lister bound to a GitLab instance and token.
type ProjectListerFactory func(remoteURL string, accessToken string) (gitlab.ProjectLister, error)

// Dependencies enumerates the collaborators of the interactive flow.
type Dependencies struct {
	ProjectListerFactory ProjectListerFactory
	GitExecutor          cloning.GitExecutor
	FileSystem           cloning.FileSystem
}

// Defaults seeds the interactive form with values resolved outside the terminal session.
type Defaults struct {
	RemoteURL   string
	AccessToken string
	GroupName   string
	Directory   string
}

type wizardPhase int

const (
	phaseCredentials wizardPhase = iota
	phaseFetching
	phaseSelecting
	phaseCloning
	phaseReport
)

const (
	fieldToken = iota
	fieldGroup
	fieldDirectory
	fieldCount
)

type projectsListedMessage struct {
	projects []gitlab.Project
}

type listingFailedMessage struct {
	listingError error
}

type jobFinishedMessage struct {
	jobIndex int
	outcome  cloning.Outcome
}

// Model drives the interactive clone flow through its phases.
type Model struct {
	dependencies Dependencies
	defaults     Defaults

	phase        wizardPhase
	formInputs   []textinput.Model
	focusedField int
	notice       string

	loadingSpinner spinner.Model
	progressBar    progress.Model

	groupProjects    []gitlab.Project
	cursorIndex      int
	selectedProjects map[int]bool

	cloneService *cloning.Service
	cloneJobs    []cloning.CloneJob
	batchReport  cloning.BatchReport

	flowError error
	finished  bool
}

// NewModel constructs the interactive flow model, validating its collaborators.
func NewModel(dependencies Dependencies, defaults Defaults) (Model, error) {
	if dependencies.ProjectListerFactory == nil {
		return Model{}, ErrProjectListerFactoryNotConfigured
	}

	dependencies.FileSystem = cloning.ResolveFileSystem(dependencies.FileSystem)
	cloneService, serviceCreationError := cloning.NewService(cloning.Dependencies{
		GitExecutor: dependencies.GitExecutor,
		FileSystem:  dependencies.FileSystem,
	})
	if serviceCreationError != nil {
		return Model{}, serviceCreationError
	}

	tokenInput := textinput.New()
	tokenInput.Placeholder = tokenInputPlaceholderConstant
	tokenInput.EchoMode = textinput.EchoPassword
	tokenInput.EchoCharacter = tokenEchoCharacterConstant
	tokenInput.SetValue(defaults.AccessToken)
	tokenInput.Focus()

	groupInput := textinput.New()
	groupInput.Placeholder = groupInputPlaceholderConstant
	groupInput.SetValue(defaults.GroupName)

	directoryInput := textinput.New()
	directoryInput.Placeholder = directoryInputPlaceholderConstant
	directoryInput.SetValue(defaults.Directory)

	loadingSpinner := spinner.New()
	loadingSpinner.Spinner = spinner.Dot
	loadingSpinner.Style = spinnerStyle

	return Model{
		dependencies:     dependencies,
		defaults:         defaults,
		phase:            phaseCredentials,
		formInputs:       []textinput.Model{tokenInput, groupInput, directoryInput},
		loadingSpinner:   loadingSpinner,
		progressBar:      progress.New(progress.WithDefaultGradient()),
		selectedProjects: map[int]bool{},
		cloneService:     cloneService,
	}, nil
}

// Init starts the spinner tick used by the fetching phase.
func (model Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, model.loadingSpinner.Tick)
}

// Update advances the flow in response to key presses and command results.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMessage := message.(type) {
	case tea.KeyMsg:
		if typedMessage.String() == "ctrl+c" {
			model.finished = true
			return model, tea.Quit
		}
		return model.handleKey(typedMessage)

	case spinner.TickMsg:
		var tickCommand tea.Cmd
		model.loadingSpinner, tickCommand = model.loadingSpinner.Update(typedMessage)
		return model, tickCommand

	case projectsListedMessage:
		model.groupProjects = typedMessage.projects
		if len(model.groupProjects) == 0 {
			model.notice = fmt.Sprintf(noProjectsFoundNoticeTemplateConstant, model.groupName())
			model.phase = phaseCredentials
			return model, nil
		}
		model.phase = phaseSelecting
		model.cursorIndex = 0
		model.selectedProjects = map[int]bool{}
		return model, nil

	case listingFailedMessage:
		model.flowError = typedMessage.listingError
		model.phase = phaseCredentials
		return model, nil

	case jobFinishedMessage:
		model.batchReport = append(model.batchReport, cloning.JobOutcome{
			Job:     model.cloneJobs[typedMessage.jobIndex],
			Outcome: typedMessage.outcome,
		})
		nextJobIndex := typedMessage.jobIndex + 1
		if nextJobIndex < len(model.cloneJobs) {
			return model, model.cloneJobCommand(nextJobIndex)
		}
		model.phase = phaseReport
		return model, nil
	}

	return model.updateFocusedInput(message)
}

func (model Model) handleKey(keyMessage tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch model.phase {
	case phaseCredentials:
		return model.handleCredentialsKey(keyMessage)
	case phaseSelecting:
		return model.handleSelectionKey(keyMessage)
	case phaseReport:
		model.finished = true
		return model, tea.Quit
	}
	return model, nil
}

func (model Model) handleCredentialsKey(keyMessage tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMessage.String() {
	case "esc":
		model.finished = true
		return model, tea.Quit

	case "tab", "down":
		return model.focusField((model.focusedField + 1) % fieldCount), nil

	case "shift+tab", "up":
		return model.focusField((model.focusedField + fieldCount - 1) % fieldCount), nil

	case "enter":
		if model.focusedField < fieldCount-1 {
			return model.focusField(model.focusedField + 1), nil
		}
		return model.startFetching()
	}

	return model.updateFocusedInput(keyMessage)
}

func (model Model) handleSelectionKey(keyMessage tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMessage.String() {
	case "esc":
		model.finished = true
		return model, tea.Quit

	case "up", "k":
		if model.cursorIndex > 0 {
			model.cursorIndex--
		}

	case "down", "j":
		if model.cursorIndex < len(model.groupProjects)-1 {
			model.cursorIndex++
		}

	case " ":
		model.selectedProjects[model.cursorIndex] = !model.selectedProjects[model.cursorIndex]

	case "a":
		for projectIndex := range model.groupProjects {
			model.selectedProjects[projectIndex] = true
		}

	case "n":
		model.selectedProjects = map[int]bool{}

	case "enter":
		return model.startCloning()
	}

	return model, nil
}

func (model Model) focusField(fieldIndex int) Model {
	model.focusedField = fieldIndex
	for inputIndex := range model.formInputs {
		if inputIndex == fieldIndex {
			model.formInputs[inputIndex].Focus()
			continue
		}
		model.formInputs[inputIndex].Blur()
	}
	return model
}

func (model Model) updateFocusedInput(message tea.Msg) (tea.Model, tea.Cmd) {
	if model.phase != phaseCredentials {
		return model, nil
	}
	var inputCommand tea.Cmd
	model.formInputs[model.focusedField], inputCommand = model.formInputs[model.focusedField].Update(message)
	return model, inputCommand
}

func (model Model) startFetching() (tea.Model, tea.Cmd) {
	model.flowError = nil
	model.notice = ""

	if len(model.groupName()) == 0 {
		model.notice = groupNameRequiredNoticeConstant
		return model.focusField(fieldGroup), nil
	}
	if len(model.directory()) == 0 {
		model.notice = directoryRequiredNoticeConstant
		return model.focusField(fieldDirectory), nil
	}

	model.phase = phaseFetching
	return model, tea.Batch(model.loadingSpinner.Tick, model.listProjectsCommand())
}

func (model Model) startCloning() (tea.Model, tea.Cmd) {
	selectedProjects := model.projectsInSelectionOrder()
	if len(selectedProjects) == 0 {
		model.notice = noProjectsSelectedNoticeConstant
		return model, nil
	}

	jobPlanner, plannerCreationError := cloning.NewPlanner(model.dependencies.FileSystem)
	if plannerCreationError != nil {
		model.flowError = plannerCreationError
		model.phase = phaseReport
		return model, nil
	}

	plannedJobs, planningError := jobPlanner.PlanJobs(selectedProjects, model.directory())
	if planningError != nil {
		model.notice = planningError.Error()
		return model, nil
	}

	model.notice = ""
	model.cloneJobs = plannedJobs
	model.batchReport = make(cloning.BatchReport, 0, len(plannedJobs))
	model.phase = phaseCloning
	return model, tea.Batch(model.loadingSpinner.Tick, model.cloneJobCommand(0))
}

func (model Model) listProjectsCommand() tea.Cmd {
	listerFactory := model.dependencies.ProjectListerFactory
	remoteURL := model.defaults.RemoteURL
	accessToken := model.accessToken()
	groupName := model.groupName()

	return func() tea.Msg {
		projectLister, listerCreationError := listerFactory(remoteURL, accessToken)
		if listerCreationError != nil {
			return listingFailedMessage{listingError: listerCreationError}
		}
		listedProjects, listingError := projectLister.ListGroupProjects(context.Background(), gitlab.ListingOptions{GroupName: groupName})
		if listingError != nil {
			return listingFailedMessage{listingError: listingError}
		}
		return projectsListedMessage{projects: listedProjects}
	}
}

func (model Model) cloneJobCommand(jobIndex int) tea.Cmd {
	cloneService := model.cloneService
	cloneJob := model.cloneJobs[jobIndex]
	accessToken := model.accessToken()

	return func() tea.Msg {
		return jobFinishedMessage{
			jobIndex: jobIndex,
			outcome:  cloneService.CloneOne(context.Background(), cloneJob, accessToken),
		}
	}
}

func (model Model) projectsInSelectionOrder() []gitlab.Project {
	selectedProjects := make([]gitlab.Project, 0, len(model.selectedProjects))
	for projectIndex, groupProject := range model.groupProjects {
		if model.selectedProjects[projectIndex] {
			selectedProjects = append(selectedProjects, groupProject)
		}
	}
	return selectedProjects
}

func (model Model) accessToken() string {
	return strings.TrimSpace(model.formInputs[fieldToken].Value())
}

func (model Model) groupName() string {
	return strings.TrimSpace(model.formInputs[fieldGroup].Value())
}

func (model Model) directory() string {
	return strings.TrimSpace(model.formInputs[fieldDirectory].Value())
}

// Report exposes the batch outcomes once the flow has finished.
func (model Model) Report() cloning.BatchReport {
	return model.batchReport
}

// View renders the current phase.
func (model Model) View() string {
	if model.finished {
		return ""
	}

	var viewBuilder strings.Builder
	viewBuilder.WriteString(titleStyle.Render(titleTextConstant))
	viewBuilder.WriteString("\n\n")

	switch model.phase {
	case phaseCredentials:
		model.renderCredentials(&viewBuilder)
	case phaseFetching:
		fmt.Fprintf(&viewBuilder, fetchingTextTemplateConstant, model.loadingSpinner.View(), model.groupName())
		viewBuilder.WriteString("\n")
	case phaseSelecting:
		model.renderSelection(&viewBuilder)
	case phaseCloning:
		model.renderCloning(&viewBuilder)
	case phaseReport:
		model.renderReport(&viewBuilder)
	}

	return viewBuilder.String()
}

func (model Model) renderCredentials(viewBuilder *strings.Builder) {
	for _, formInput := range model.formInputs {
		viewBuilder.WriteString(formInput.View())
		viewBuilder.WriteString("\n")
	}
	if model.flowError != nil {
		viewBuilder.WriteString("\n")
		viewBuilder.WriteString(errorStyle.Render(model.flowError.Error()))
		viewBuilder.WriteString("\n")
	}
	if len(model.notice) > 0 {
		viewBuilder.WriteString("\n")
		viewBuilder.WriteString(noticeStyle.Render(model.notice))
		viewBuilder.WriteString("\n")
	}
	viewBuilder.WriteString("\n")
	viewBuilder.WriteString(hintStyle.Render(credentialsHintTextConstant))
	viewBuilder.WriteString("\n")
}

func (model Model) renderSelection(viewBuilder *strings.Builder) {
	selectedCount := 0
	for _, projectSelected := range model.selectedProjects {
		if projectSelected {
			selectedCount++
		}
	}

	fmt.Fprintf(viewBuilder, selectionTitleTemplateConstant, model.groupName(), selectedCount)
	viewBuilder.WriteString("\n\n")

	for projectIndex, groupProject := range model.groupProjects {
		cursorMarker := noCursorMarkerConstant
		if projectIndex == model.cursorIndex {
			cursorMarker = cursorMarkerConstant
		}
		selectionMarker := unselectedMarkerConstant
		if model.selectedProjects[projectIndex] {
			selectionMarker = selectedMarkerConstant
		}
		fmt.Fprintf(viewBuilder, "%s%s %s\n", cursorMarker, selectionMarker, projectStyle.Render(groupProject.PathWithNamespace))
	}

	if len(model.notice) > 0 {
		viewBuilder.WriteString("\n")
		viewBuilder.WriteString(noticeStyle.Render(model.notice))
		viewBuilder.WriteString("\n")
	}
	viewBuilder.WriteString("\n")
	viewBuilder.WriteString(hintStyle.Render(selectionHintTextConstant))
	viewBuilder.WriteString("\n")
}

func (model Model) renderCloning(viewBuilder *strings.Builder) {
	completedJobs := len(model.batchReport)
	totalJobs := len(model.cloneJobs)

	currentJobLabel := ""
	if completedJobs < totalJobs {
		currentJobLabel = model.cloneJobs[completedJobs].Project.PathWithNamespace
	}
	fmt.Fprintf(viewBuilder, cloningTextTemplateConstant, completedJobs+1, totalJobs, projectStyle.Render(currentJobLabel))
	viewBuilder.WriteString("\n\n")
	viewBuilder.WriteString(model.progressBar.ViewAs(float64(completedJobs) / float64(totalJobs)))
	viewBuilder.WriteString("\n")
}

func (model Model) renderReport(viewBuilder *strings.Builder) {
	if model.flowError != nil {
		viewBuilder.WriteString(errorStyle.Render(model.flowError.Error()))
		viewBuilder.WriteString("\n\n")
	}

	for _, jobOutcome := range model.batchReport {
		projectLabel := jobOutcome.Job.Project.PathWithNamespace
		if jobOutcome.Outcome.Succeeded {
			viewBuilder.WriteString(successStyle.Render(fmt.Sprintf(reportLineSuccessTemplateConstant, projectLabel)))
		} else {
			failureLabel := jobOutcome.Outcome.FailureReason
			if len(jobOutcome.Outcome.Detail) > 0 {
				failureLabel = fmt.Sprintf("%s: %s", jobOutcome.Outcome.FailureReason, jobOutcome.Outcome.Detail)
			}
			viewBuilder.WriteString(errorStyle.Render(fmt.Sprintf(reportLineFailureTemplateConstant, projectLabel, failureLabel)))
		}
		viewBuilder.WriteString("\n")
	}

	viewBuilder.WriteString("\n")
	fmt.Fprintf(viewBuilder, reportSummaryTemplateConstant, model.batchReport.SucceededCount(), len(model.batchReport), model.directory())
	viewBuilder.WriteString("\n\n")
	viewBuilder.WriteString(hintStyle.Render(reportHintTextConstant))
	viewBuilder.WriteString("\n")
}
