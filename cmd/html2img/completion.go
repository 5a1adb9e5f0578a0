package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	imgkit "github.com/alnah/go-imgkit"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long       string   // --output
	Short      string   // -o (empty if none)
	Type       flagType // completion type
	Desc       string   // help text
	Values     []string // for enum flags
	FileGlob   string   // for file flags
	Repeatable bool
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Args  []string // fixed argument values, if any
}

// completionMeta holds completion hints the FlagSet cannot express.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

// flagCompletionMeta maps flag names to their completion metadata.
// Flag names, types, and descriptions come from the FlagSet.
var flagCompletionMeta = map[string]completionMeta{
	"format":  {Values: knownFormatNames()},
	"backend": {Values: []string{string(imgkit.BackendWkhtmltoimage), string(imgkit.BackendChrome)}},

	"config":     {FileGlob: "*.yaml,*.yml"},
	"css":        {FileGlob: "*.css"},
	"js":         {FileGlob: "*.js"},
	"executable": {FileGlob: "*"},
	"output":     {FileGlob: "*"},
}

var shells = []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int64", "uint":
			fd.Type = flagInt
		case "stringArray":
			fd.Repeatable = true
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:  "render",
			Desc:  "Render HTML, Markdown or a URL to an image",
			Flags: extractFlagsFromFlagSet(newRenderFlagSet(&renderFlags{})),
		},
		{
			Name:  "doctor",
			Desc:  "Check renderers and environment",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "print results as JSON"}},
		},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Args: commandNames()},
		{Name: "completion", Desc: "Generate shell completion script", Args: shells},
	}
}

func commandNames() []string {
	return []string{"render", "doctor", "version", "help", "completion"}
}

// GenerateCompletion writes shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	cmds := getCommands()
	var script string
	switch shell {
	case ShellBash:
		script = bashScript(cmds)
	case ShellZsh:
		script = zshScript(cmds)
	case ShellFish:
		script = fishScript(cmds)
	case ShellPowerShell:
		script = powerShellScript(cmds)
	default:
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedShell, shell, strings.Join(shells, ", "))
	}
	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2img completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(html2img completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(html2img completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    html2img completion fish > ~/.config/fish/completions/html2img.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    html2img completion powershell | Out-String | Invoke-Expression")
}

// flagNames returns every spelling of every flag, long first.
func flagNames(flags []flagDef) []string {
	var names []string
	for _, f := range flags {
		names = append(names, "--"+f.Long)
		if f.Short != "" {
			names = append(names, "-"+f.Short)
		}
	}
	return names
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func bashScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# bash completion for html2img\n")
	b.WriteString("_html2img_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=render\n")
	fmt.Fprintf(&b, "    case \"${COMP_WORDS[1]}\" in %s) cmd=\"${COMP_WORDS[1]}\" ;; esac\n", strings.Join(commandNames(), "|"))
	b.WriteString("\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 && \"$cur\" != -* ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\") $(compgen -f -- \"$cur\"))\n", strings.Join(commandNames(), " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"$cmd:$prev\" in\n")
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Type == flagBool {
				continue
			}
			pattern := c.Name + ":--" + f.Long
			if f.Short != "" {
				pattern += "|" + c.Name + ":-" + f.Short
			}
			fmt.Fprintf(&b, "        %s) %s; return ;;\n", pattern, bashValueCompletion(f))
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", c.Name, strings.Join(c.Args, " "))
		case len(c.Flags) > 0:
			fmt.Fprintf(&b, "        %s)\n", c.Name)
			b.WriteString("            if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(flagNames(c.Flags), " "))
			if c.Name == "render" {
				b.WriteString("            else\n")
				b.WriteString("                COMPREPLY=($(compgen -f -- \"$cur\"))\n")
			}
			b.WriteString("            fi\n")
			b.WriteString("            ;;\n")
		}
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -o filenames -F _html2img_completions html2img\n")
	return b.String()
}

func bashValueCompletion(f flagDef) string {
	switch f.Type {
	case flagEnum:
		return fmt.Sprintf("COMPREPLY=($(compgen -W %q -- \"$cur\"))", strings.Join(f.Values, " "))
	case flagFile:
		return "COMPREPLY=($(compgen -f -- \"$cur\"))"
	case flagDir:
		return "COMPREPLY=($(compgen -d -- \"$cur\"))"
	}
	return "COMPREPLY=()"
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func zshScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("#compdef html2img\n\n")
	b.WriteString("_html2img() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        _files\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case $words[2] in\n")
	var render commandDef
	for _, c := range cmds {
		if c.Name == "render" {
			render = c
			continue
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "        %s) _values '%s' %s ;;\n", c.Name, c.Name, strings.Join(c.Args, " "))
		case len(c.Flags) > 0:
			fmt.Fprintf(&b, "        %s) _arguments %s ;;\n", c.Name, strings.Join(zshArgSpecs(c.Flags), " "))
		default:
			fmt.Fprintf(&b, "        %s) ;;\n", c.Name)
		}
	}
	b.WriteString("        *)\n")
	b.WriteString("            _arguments -s \\\n")
	for _, spec := range zshArgSpecs(render.Flags) {
		fmt.Fprintf(&b, "                %s \\\n", spec)
	}
	b.WriteString("                '*:input:_files'\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _html2img html2img\n")
	return b.String()
}

func zshArgSpecs(flags []flagDef) []string {
	specs := make([]string, 0, len(flags))
	for _, f := range flags {
		desc := "[" + zshEscape(f.Desc) + "]"
		var action string
		switch f.Type {
		case flagBool:
		case flagEnum:
			action = ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
		case flagFile:
			action = ":" + f.Long + ":_files"
			if f.FileGlob != "*" {
				action += " -g '" + strings.ReplaceAll(f.FileGlob, ",", " ") + "'"
			}
		case flagDir:
			action = ":" + f.Long + ":_files -/"
		default:
			action = ":" + f.Long + ": "
		}

		repeat := ""
		if f.Repeatable {
			repeat = "*"
		}
		if f.Short == "" {
			specs = append(specs, "'"+repeat+"--"+f.Long+desc+action+"'")
			continue
		}
		if f.Repeatable {
			specs = append(specs, "'*'{-"+f.Short+",--"+f.Long+"}'"+desc+action+"'")
			continue
		}
		specs = append(specs, "'(-"+f.Short+" --"+f.Long+")'{-"+f.Short+",--"+f.Long+"}'"+desc+action+"'")
	}
	return specs
}

var zshReplacer = strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")

func zshEscape(s string) string { return zshReplacer.Replace(s) }

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func fishScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# fish completion for html2img\n\n")
	b.WriteString("function __fish_html2img_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_html2img_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c html2img -n __fish_html2img_needs_command -f -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	b.WriteString("\n")

	others := strings.Join(commandNames()[1:], " ")
	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_html2img_using_command %s'", c.Name)
		if c.Name == "render" {
			// render is also the implicit command
			cond = fmt.Sprintf("'not __fish_seen_subcommand_from %s'", others)
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c html2img -n %s -f -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
		for _, f := range c.Flags {
			b.WriteString("complete -c html2img -n " + cond)
			if f.Short != "" {
				b.WriteString(" -s " + f.Short)
			}
			b.WriteString(" -l " + f.Long)
			switch f.Type {
			case flagBool:
			case flagEnum:
				fmt.Fprintf(&b, " -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile:
				b.WriteString(" -r -F")
			case flagDir:
				b.WriteString(" -x -a '(__fish_complete_directories)'")
			default:
				b.WriteString(" -x")
			}
			fmt.Fprintf(&b, " -d '%s'\n", fishEscape(f.Desc))
		}
	}
	return b.String()
}

func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func powerShellScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# powershell completion for html2img\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName html2img -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	fmt.Fprintf(&b, "    $commands = @(%s)\n", psList(commandNames()))
	b.WriteString("    $candidates = @{\n")
	for _, c := range cmds {
		values := c.Args
		if len(c.Flags) > 0 {
			values = flagNames(c.Flags)
		}
		fmt.Fprintf(&b, "        '%s' = @(%s)\n", c.Name, psList(values))
	}
	b.WriteString("    }\n\n")
	b.WriteString("    $elements = $commandAst.CommandElements\n")
	b.WriteString("    $cmd = 'render'\n")
	b.WriteString("    if ($elements.Count -gt 1 -and $commands -contains $elements[1].ToString()) {\n")
	b.WriteString("        $cmd = $elements[1].ToString()\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $values = $candidates[$cmd]\n")
	b.WriteString("    if ($elements.Count -le 2 -and -not $wordToComplete.StartsWith('-')) {\n")
	b.WriteString("        $values = $commands\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $values | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
	return b.String()
}

func psList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}
