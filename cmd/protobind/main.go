// Command protobind transcodes JSON messages against a compiled descriptor
// set, exercising the same contracts the library serves to embedding
// gateways.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"gopkg.in/yaml.v3"

	"github.com/reoring/protobind"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "transcode":
		transcodeCmd(os.Args[2:])
	case "fields":
		fieldsCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `protobind CLI

Usage:
  protobind transcode -descriptor set.binpb -type pkg.Message [-profile cfg.yaml] [-in file.json]
  protobind fields    -descriptor set.binpb -type pkg.Message

Notes:
  - "transcode" decodes JSON (stdin by default) into the message type and
    re-encodes it, proving the input survives the binding rules.
  - "fields" prints the contract's JSON keys in output order.`)
}

// profile mirrors the library option surface for file-based configuration.
type profile struct {
	EmitDefaults   bool   `yaml:"emitDefaults"`
	EnumsAsInts    bool   `yaml:"enumsAsInts"`
	DiscardUnknown bool   `yaml:"discardUnknown"`
	OnDuplicateKey string `yaml:"onDuplicateKey"` // ignore | warn | error
	MaxDepth       int    `yaml:"maxDepth"`
	MaxBytes       int64  `yaml:"maxBytes"`
}

func (p profile) marshalOptions() protobind.MarshalOptions {
	return protobind.MarshalOptions{
		EmitDefaults: p.EmitDefaults,
		EnumsAsInts:  p.EnumsAsInts,
	}
}

func (p profile) unmarshalOptions() (protobind.UnmarshalOptions, error) {
	opt := protobind.UnmarshalOptions{
		DiscardUnknown: p.DiscardUnknown,
		MaxDepth:       p.MaxDepth,
		MaxBytes:       p.MaxBytes,
	}
	switch p.OnDuplicateKey {
	case "", "ignore":
		opt.Strictness.OnDuplicateKey = protobind.Ignore
	case "warn":
		opt.Strictness.OnDuplicateKey = protobind.Warn
	case "error":
		opt.Strictness.OnDuplicateKey = protobind.Error
	default:
		return opt, fmt.Errorf("unknown onDuplicateKey value %q", p.OnDuplicateKey)
	}
	return opt, nil
}

func loadProfile(path string) (profile, error) {
	var p profile
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return p, nil
}

func resolveMessage(descPath, typeName string) (protoreflect.MessageDescriptor, error) {
	data, err := os.ReadFile(descPath)
	if err != nil {
		return nil, err
	}
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing descriptor set %s: %w", descPath, err)
	}
	files, err := protodesc.NewFiles(&set)
	if err != nil {
		return nil, err
	}
	d, err := files.FindDescriptorByName(protoreflect.FullName(typeName))
	if err != nil {
		return nil, fmt.Errorf("type %q not found in %s: %w", typeName, descPath, err)
	}
	md, ok := d.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("%q is not a message type", typeName)
	}
	return md, nil
}

func transcodeCmd(args []string) {
	fs := flag.NewFlagSet("transcode", flag.ExitOnError)
	descPath := fs.String("descriptor", "", "serialized FileDescriptorSet")
	typeName := fs.String("type", "", "fully qualified message type")
	profilePath := fs.String("profile", "", "YAML options profile")
	inPath := fs.String("in", "", "input JSON file (default stdin)")
	_ = fs.Parse(args)
	if *descPath == "" || *typeName == "" {
		fs.Usage()
		os.Exit(2)
	}

	md, err := resolveMessage(*descPath, *typeName)
	if err != nil {
		fatal(err)
	}
	prof, err := loadProfile(*profilePath)
	if err != nil {
		fatal(err)
	}
	uopt, err := prof.unmarshalOptions()
	if err != nil {
		fatal(err)
	}

	var in io.Reader = os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		in = f
	}

	msg := dynamicpb.NewMessage(md)
	if err := protobind.UnmarshalFrom(protobind.JSONReader(in), msg, uopt); err != nil {
		fatal(err)
	}
	out, err := protobind.Marshal(msg, prof.marshalOptions())
	if err != nil {
		fatal(err)
	}
	os.Stdout.Write(out)
	fmt.Println()
}

func fieldsCmd(args []string) {
	fs := flag.NewFlagSet("fields", flag.ExitOnError)
	descPath := fs.String("descriptor", "", "serialized FileDescriptorSet")
	typeName := fs.String("type", "", "fully qualified message type")
	_ = fs.Parse(args)
	if *descPath == "" || *typeName == "" {
		fs.Usage()
		os.Exit(2)
	}

	md, err := resolveMessage(*descPath, *typeName)
	if err != nil {
		fatal(err)
	}
	c, err := protobind.ContractFor(dynamicpb.NewMessage(md))
	if err != nil {
		fatal(err)
	}
	for _, b := range c.Fields() {
		fmt.Printf("%d\t%s\n", b.Number(), b.JSONName())
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "protobind:", err)
	os.Exit(1)
}
