// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

const (
	ConfigLoadFailedId Id = iota + 1
	CommandNotFoundId
	PluginNotFoundId
	PluginLoadFailedId
	BackendNotRegisteredId
	ExperimentParseErrorId
	DatasetParseErrorId
	SerializationDirNotEmptyId
	ScriptExecutionFailedId
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown using the named glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- " + string(link) + "\n"
		}
		for _, link := range i.extLinks {
			md += "- " + string(link) + "\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the configuration!

The reclib configuration file exists but could not be read or validated.

## Things you can try:
- Check the error message above for the field that failed validation
- Remove unknown fields; the schema is closed
- Valid log levels are debug, info, warn and error
- Move the file aside to fall back to the built-in defaults:
~~~
$ mv "/.config/reclib/config.cue "/.config/reclib/config.cue.bak
~~~`,
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found!

The command you specified is not one of the registered reclib commands.

## Things you can try:
- List the available commands:
~~~
$ reclib --help
~~~

- Check for typos in the command name`,
	}

	pluginNotFoundIssue = &Issue{
		id: PluginNotFoundId,
		mdMsg: `
# Plugin not found!

A name passed with --include-package did not match any built-in plugin or
any plugin directory on the search path.

## Things you can try:
- Check the spelling; names are dotted, like "my_models.readers"
- Add the directory that contains your plugin to "plugin_paths" in the
  configuration, or set "RECLIB_PLUGIN_PATHS"
- Run the install check to see the search path:
~~~
$ reclib test-install
~~~`,
	}

	pluginLoadFailedIssue = &Issue{
		id: PluginLoadFailedId,
		mdMsg: `
# Failed to load a plugin!

The plugin was found, but its manifest or registration failed.

## Things you can try:
- Validate "plugin.cue" or "plugin.toml" against the manifest format
- Make sure each backend name is declared only once across your plugins`,
	}

	backendNotRegisteredIssue = &Issue{
		id: BackendNotRegisteredId,
		mdMsg: `
# Model backend not registered!

The experiment names a model that no loaded plugin provides.

## Things you can try:
- Load the plugin that provides the model:
~~~
$ reclib train experiment.cue -s out --include-package my_models
~~~

- List the backends that are currently registered:
~~~
$ reclib test-install
~~~`,
	}

	experimentParseErrorIssue = &Issue{
		id: ExperimentParseErrorId,
		mdMsg: `
# Failed to parse the experiment file!

The experiment contains invalid CUE, or it does not match the experiment schema.

## Things you can try:
- Check the error message above for the field path
- Generate a starter file and compare:
~~~
$ reclib configure -o experiment.cue
~~~

- Overrides passed with -o must be a JSON or CUE struct`,
	}

	datasetParseErrorIssue = &Issue{
		id: DatasetParseErrorId,
		mdMsg: `
# Failed to read the dataset!

A ratings file could not be parsed.

## Things you can try:
- Check "dataset.format": use movielens-20m for comma separated files and
  movielens-1m for "::" separated files
- Each row needs at least user, item and rating columns`,
	}

	serializationDirNotEmptyIssue = &Issue{
		id: SerializationDirNotEmptyId,
		mdMsg: `
# Serialization directory is not empty!

Training refuses to overwrite the results of another run.

## Things you can try:
- Pick a new directory with -s
- Continue the previous run with --recover
- Overwrite the directory with --force`,
	}

	scriptExecutionFailedIssue = &Issue{
		id: ScriptExecutionFailedId,
		mdMsg: `
# Backend script failed!

The script backend exited with a non-zero status.

## Things you can try:
- Read the script output above
- The script receives its task through RECLIB_TASK, RECLIB_PARAMS and
  RECLIB_SERIALIZATION_DIR; check the values it expects`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		commandNotFoundIssue.Id():          commandNotFoundIssue,
		pluginNotFoundIssue.Id():           pluginNotFoundIssue,
		pluginLoadFailedIssue.Id():         pluginLoadFailedIssue,
		backendNotRegisteredIssue.Id():     backendNotRegisteredIssue,
		experimentParseErrorIssue.Id():     experimentParseErrorIssue,
		datasetParseErrorIssue.Id():        datasetParseErrorIssue,
		serializationDirNotEmptyIssue.Id(): serializationDirNotEmptyIssue,
		scriptExecutionFailedIssue.Id():    scriptExecutionFailedIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, is := range issues {
		out = append(out, is)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id - b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
