// Copyright 2024 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Command zkevmrun is the CLI collaborator spec.md §6 describes: it owns
// everything the core execution engine treats as out of scope (bytecode
// file parsing, storage backend selection, process exit codes) and
// drives a single core/vm.Execution to completion, the way gprobe's
// cmd/ layer wraps the node the rest of the teacher repo implements.
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/probeum/zkevm-core/cmd/zkevmrun/bytecode"
	"github.com/probeum/zkevm-core/common"
	"github.com/probeum/zkevm-core/core/vm"
	"github.com/probeum/zkevm-core/log"
)

var (
	gasFlag = cli.Uint64Flag{
		Name:  "gas",
		Usage: "initial ergs budget for the root frame",
		Value: 1_000_000,
	}
	calldataFlag = cli.StringFlag{
		Name:  "calldata",
		Usage: "hex-encoded calldata for the root far call (0x-prefixed optional)",
	}
	contractFlag = cli.StringFlag{
		Name:  "contract",
		Usage: "hex-encoded 20-byte address the bytecode is decommitted under",
	}
	dbFlag = cli.StringFlag{
		Name:  "db",
		Usage: "path to a LevelDB directory for persistent storage; defaults to an in-memory store",
	}
	debugFlag = cli.BoolFlag{
		Name:  "debug",
		Usage: "set the log level to debug",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "zkevmrun"
	app.Usage = "run a single zkEVM bytecode file against the execution core"
	app.ArgsUsage = "<bytecode-file>"
	app.Flags = []cli.Flag{gasFlag, calldataFlag, contractFlag, dbFlag, debugFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("expected exactly one positional argument: <bytecode-file>", 2)
	}

	if ctx.Bool(debugFlag.Name) {
		log.Root.SetLevel(log.LevelDebug)
	}

	path := ctx.Args().Get(0)
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read bytecode file: %v\n", err)
		os.Exit(2)
	}

	words, err := bytecode.DecodeHex(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode bytecode: %v\n", err)
		os.Exit(2)
	}

	calldata, err := bytecode.DecodeHexString(ctx.String(calldataFlag.Name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode calldata: %v\n", err)
		os.Exit(2)
	}

	var contractAddr common.Address
	if s := ctx.String(contractFlag.Name); s != "" {
		b, err := bytecode.DecodeHexString(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode contract address: %v\n", err)
			os.Exit(2)
		}
		contractAddr = common.BytesToAddress(b)
	}

	backend, closeBackend, err := bytecode.OpenBackend(ctx.String(dbFlag.Name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "open storage backend: %v\n", err)
		os.Exit(2)
	}
	defer closeBackend()

	hash := bytecode.HashCodeWords(words)
	if err := backend.AddContract(hash, words); err != nil {
		fmt.Fprintf(os.Stderr, "register bytecode: %v\n", err)
		os.Exit(2)
	}
	if err := bytecode.RegisterCodeInfo(backend, contractAddr, hash); err != nil {
		fmt.Fprintf(os.Stderr, "register code info: %v\n", err)
		os.Exit(2)
	}

	ex := vm.New(backend, contractAddr, calldata, uint32(ctx.Uint64(gasFlag.Name)), vm.Config{})

	out, err := ex.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "execution error: %v\n", err)
		os.Exit(2)
	}

	switch out.Kind {
	case vm.OutputOk:
		fmt.Printf("Ok: %x\n", out.ReturnData)
		os.Exit(0)
	case vm.OutputRevert:
		fmt.Printf("Revert: %x\n", out.ReturnData)
		os.Exit(1)
	default:
		fmt.Println("Panic")
		os.Exit(1)
	}
	return nil
}
