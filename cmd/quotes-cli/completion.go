package main

import "fmt"

func completionMain(args []string) {
	shell := "bash"
	if len(args) > 0 && args[0] != "" {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	default:
		fatalf("unsupported shell: %s (use bash or zsh)", shell)
	}
}

const bashCompletion = `
_quotes_cli_completions()
{
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "exec ping config features completion --config --base-url --autostart --copyable-output --c --enable --disable" -- "$cur") )
        return 0
    fi

    case "$prev" in
        --enable|--disable)
            COMPREPLY=( $(compgen -W "autoscroll clipboard autostart" -- "$cur") )
            return 0
            ;;
    esac

    case "${COMP_WORDS[1]}" in
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            ;;
        config)
            COMPREPLY=( $(compgen -W "show set path --config --c" -- "$cur") )
            ;;
        exec)
            COMPREPLY=( $(compgen -W "--config --base-url --c --count --json --timeout" -- "$cur") )
            ;;
        ping)
            COMPREPLY=( $(compgen -W "--config --base-url --c --timeout" -- "$cur") )
            ;;
        features)
            COMPREPLY=( $(compgen -W "--config --c" -- "$cur") )
            ;;
        *)
            COMPREPLY=( $(compgen -W "--config --base-url --autostart --copyable-output --c" -- "$cur") )
            ;;
    esac
}
complete -F _quotes_cli_completions quotes-cli
`

const zshCompletion = `
#compdef quotes-cli
_quotes_cli() {
    local -a subcmds
    subcmds=('exec:print quotes to stdout' 'ping:check the quotes backend' 'config:show or edit the config file' 'features:list feature flags' 'completion:print shell completions')
    if (( CURRENT == 2 )); then
        _describe 'command' subcmds
        return
    fi
    case "$words[2]" in
        completion)
            _values 'shell' bash zsh
            ;;
        config)
            _values 'action' show set path
            ;;
        exec)
            _arguments \
                '--config[Path to config file]' \
                '--base-url[Quotes backend base URL]' \
                '--c[Config key=value override]' \
                '--count[Stop after N quotes]' \
                '--json[Emit JSON events]' \
                '--timeout[Stop after duration]'
            ;;
        ping)
            _arguments \
                '--config[Path to config file]' \
                '--base-url[Quotes backend base URL]' \
                '--c[Config key=value override]' \
                '--timeout[Timeout seconds]'
            ;;
        *)
            _arguments \
                '--config[Path to config file]' \
                '--base-url[Quotes backend base URL]' \
                '--autostart[Connect on launch]' \
                '--copyable-output[Disable alt screen]' \
                '--c[Config key=value override]'
            ;;
    esac
}
_quotes_cli "$@"
`
