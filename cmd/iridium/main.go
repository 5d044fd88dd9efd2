package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"iridium/iridium"
)

var log = logrus.StandardLogger()

func main() {
	app := cli.NewApp()
	app.Name = "iridium"
	app.Usage = "assemble and run Iridium register-machine programs"
	app.Commands = []cli.Command{
		{
			Name:      "assemble",
			Usage:     "translate a source file into an Iridium binary",
			ArgsUsage: "<source.iasm> <out.ir>",
			Action:    assembleCommand,
		},
		{
			Name:      "run",
			Usage:     "execute an assembled Iridium binary",
			ArgsUsage: "<program.ir>",
			Action:    runCommand,
		},
		{
			Name:      "disasm",
			Usage:     "print an Iridium binary as mnemonics",
			ArgsUsage: "<program.ir>",
			Action:    disasmCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func assembleCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.NewExitError("usage: iridium assemble <source.iasm> <out.ir>", 1)
	}
	src, outPath := c.Args().Get(0), c.Args().Get(1)

	source, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, "reading %s", src)
	}

	a := iridium.NewAssembler()
	binary, asmErrs, err := a.Assemble(string(source))
	if err != nil {
		return errors.Wrap(err, "assembling")
	}
	if len(asmErrs) > 0 {
		for _, e := range asmErrs {
			log.WithField("source", src).Error(e)
		}
		return cli.NewExitError(fmt.Sprintf("%d assembler error(s)", len(asmErrs)), 1)
	}

	if err := os.WriteFile(outPath, binary, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", outPath)
	}

	log.WithFields(logrus.Fields{"source": src, "out": outPath, "bytes": len(binary)}).Info("assembled")
	if n := a.Symbols().Len(); n > 0 {
		log.Debugf("symbol table (%d entries):\n%s", n, a.Symbols())
	}
	return nil
}

func runCommand(c *cli.Context) (err error) {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: iridium run <program.ir>", 1)
	}
	path := c.Args().Get(0)

	program, readErr := os.ReadFile(path)
	if readErr != nil {
		return errors.Wrapf(readErr, "reading %s", path)
	}

	// Should the VM panic anyway, report that as a normal exit-code failure
	// rather than crashing the process.
	defer func() {
		if r := recover(); r != nil {
			log.WithField("program", path).Errorf("vm panicked: %v", r)
			err = cli.NewExitError("program execution failed", 1)
		}
	}()

	vm := iridium.NewVM()
	vm.AddBytes(program)
	vm.Run()

	log.WithFields(logrus.Fields{"program": path, "pc": vm.PC()}).Info("halted")
	return nil
}

func disasmCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: iridium disasm <program.ir>", 1)
	}
	path := c.Args().Get(0)

	program, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	d := iridium.NewDisassembler(program, nil)
	fmt.Print(d.Disassemble())
	return nil
}
