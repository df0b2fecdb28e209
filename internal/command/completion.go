// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfset/internal/meta"
)

const bashCompletionScript = `# bash completion for tfset
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_tfset()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "get set has forget all flush diff watch cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--store -s --store-path --dsn --table --bucket --prefix --region --profile --endpoint --path-style --defaults -d --cache -c --cache-ttl --output -o --color --titles -t --padding --filter -f --sort"

    case "$cmd" in
        get)
            local opts="$common --default"
            ;;
        set)
            local opts="$common --expr -e --yaml -y"
            ;;
        has)
            local opts="$common --quiet -q"
            ;;
        forget)
            local opts="$common --all"
            ;;
        diff)
            local opts="$common --exit-code"
            ;;
        watch)
            local opts="$common --count --debounce"
            ;;
        cache)
            local opts="stats purge --hours --output -o"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml table" -- "$cur") )
            return 0
            ;;
        --store|-s)
            COMPREPLY=( $(compgen -W "file badger postgres s3 memory" -- "$cur") )
            return 0
            ;;
        --cache|-c)
            COMPREPLY=( $(compgen -W "memory file none" -- "$cur") )
            return 0
            ;;
        --defaults|-d|--store-path)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    fi
    return 0
}

complete -F _tfset tfset
`

const zshCompletionScript = `#compdef tfset

_tfset() {
  local -a cmds
  cmds=(
    'get:print the effective value at a path'
    'set:store a value at a path'
    'has:report whether a path is set'
    'forget:remove a path from the settings'
    'all:print every effective setting'
    'flush:drop every cached settings value'
    'diff:compare the effective settings with their defaults'
    'watch:print a value whenever its files change'
    'cache:inspect or clean the file cache'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-s --store)'{-s,--store}'[settings store]:store:(file badger postgres s3 memory)'
  '--store-path[settings file or directory]:path:_files'
  '--dsn[postgres connection string]:dsn'
  '--table[postgres table]:table'
  '--bucket[s3 bucket]:bucket'
  '--prefix[s3 key prefix]:prefix'
  '--region[aws region]:region'
  '--profile[aws profile]:profile'
  '--endpoint[s3 endpoint]:url'
  '--path-style[path style s3 addressing]'
  '(-d --defaults)'{-d,--defaults}'[defaults file]:file:_files'
  '(-c --cache)'{-c,--cache}'[cache layer]:cache:(memory file none)'
  '--cache-ttl[memory cache ttl]:duration'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml table)'
  '--color[enable colored output]'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--padding[table cell padding]:padding'
  '(-f --filter)'{-f,--filter}'[filter rows]:filters'
  '--sort[sort rows]:spec:(path value -path -value)'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'tfset commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    get)
      _arguments -C $common '--default[fallback value]:value' '1:path'
      ;;
    set)
      _arguments -C $common \
        '(-e --expr)'{-e,--expr}'[evaluate VALUE as HCL]' \
        '(-y --yaml)'{-y,--yaml}'[parse VALUE as YAML]' \
        '1:path' '2:value'
      ;;
    has)
      _arguments -C $common '(-q --quiet)'{-q,--quiet}'[exit status only]' '1:path'
      ;;
    forget)
      _arguments -C $common '--all[remove every setting]' '::path'
      ;;
    diff)
      _arguments -C $common '--exit-code[exit 1 on differences]' '::path'
      ;;
    watch)
      _arguments -C $common '--count[stop after N changes]:count' '--debounce[quiet period]:duration' '1:path'
      ;;
    cache)
      _arguments '1: :((stats purge))' '--hours[age in hours]:hours' '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _tfset tfset
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := Writer(cmd)
	shell := cmd.Args().Get(0)
	if shell == "" {
		shell = os.Getenv("SHELL")
	}

	switch {
	case strings.HasSuffix(shell, "zsh"):
		fmt.Fprint(w, zshCompletionScript)
	case strings.HasSuffix(shell, "bash"):
		fmt.Fprint(w, bashCompletionScript)
	default:
		return fmt.Errorf("usage: tfset completion [bash|zsh]")
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "tfset completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
