package export

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/handler"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newExporter(opts Options) *Exporter {
	return New(handler.NewRegistry(), opts).WithLogger(quiet())
}

func sample(t *testing.T) *diagram.Document {
	t.Helper()
	d := diagram.New("web-stack", diagram.WithLogger(quiet()))
	d.Region().Attributes()[diagram.AttrRegion] = "eu-west-1"

	add := func(c *diagram.Component, parent string) {
		require.NoError(t, d.AddComponent(c, parent))
	}
	add(diagram.NewContainer("vpc", handler.TypeVPC, map[string]any{"label": "main", "cidr_block": "10.0.0.0/16", "enable_dns_support": true}), "")
	add(diagram.NewContainer("subnet", handler.TypeSubnet, map[string]any{"label": "public", "cidr_block": "10.0.1.0/24"}), "vpc")
	add(diagram.NewComponent("web", handler.TypeEC2Instance, map[string]any{"label": "web", "ami": "ami-1", "instance_type": "t3.micro"}), "subnet")
	add(diagram.NewComponent("sg", handler.TypeSecurityGroup, map[string]any{"label": "web"}), "vpc")
	add(diagram.NewComponent("logs", handler.TypeS3Bucket, map[string]any{"label": "logs", "versioning": true}), "")

	_, err := d.AddRelationship("sg", "web", diagram.ConnectsTo, "")
	require.NoError(t, err)
	_, err = d.AddRelationship("web", "logs", diagram.DependsOn, "")
	require.NoError(t, err)
	return d
}

func TestExportProducesFiles(t *testing.T) {
	res, err := newExporter(DefaultOptions()).Export(sample(t))
	require.NoError(t, err)
	require.True(t, res.Success, "%+v", res.Errors)
	assert.Empty(t, res.Errors)

	for _, name := range []string{terraform.FileVersions, terraform.FileVariables, terraform.FileMain, terraform.FileOutputs, terraform.FileTfvars} {
		assert.Contains(t, res.TerraformFiles, name)
	}
	assert.Contains(t, string(res.TerraformFiles[terraform.FileTfvars]), `"eu-west-1"`)

	main := string(res.TerraformFiles[terraform.FileMain])
	pos := func(s string) int {
		i := strings.Index(main, s)
		require.GreaterOrEqual(t, i, 0, s)
		return i
	}
	assert.Less(t, pos(`resource "aws_vpc" "main"`), pos(`resource "aws_subnet" "public"`))
	assert.Less(t, pos(`resource "aws_security_group" "web"`), pos(`resource "aws_instance" "web"`))
	assert.Less(t, pos(`resource "aws_s3_bucket" "logs"`), pos(`resource "aws_instance" "web"`))
	assert.Regexp(t, `vpc_security_group_ids\s+= \[aws_security_group\.web\.id\]`, main)

	outputs := string(res.TerraformFiles[terraform.FileOutputs])
	assert.Contains(t, outputs, `output "vpc_main_id"`)
	assert.Contains(t, outputs, `output "instance_web_id"`)
}

func TestExportOptions(t *testing.T) {
	res, err := newExporter(Options{MaxParallel: 1}).Export(sample(t))
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.NotContains(t, res.TerraformFiles, terraform.FileTfvars)
	assert.NotContains(t, res.TerraformFiles, terraform.FileOutputs)
}

func TestExportDefaultsRegion(t *testing.T) {
	d := sample(t)
	delete(d.Region().Attributes(), diagram.AttrRegion)
	res, err := newExporter(DefaultOptions()).Export(d)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, string(res.TerraformFiles[terraform.FileVariables]), diagram.DefaultAWSRegion)
	assert.NotEmpty(t, res.Warnings)
}

func TestExportReportsHandlerErrors(t *testing.T) {
	d := sample(t)
	require.NoError(t, d.AddComponent(diagram.NewComponent("bare", handler.TypeEC2Instance, nil), "subnet"))

	res, err := newExporter(DefaultOptions()).Export(d)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.TerraformFiles)
	require.Len(t, res.Errors, 2)
	for _, e := range res.Errors {
		assert.Equal(t, "bare", e.NodeID)
	}
}

func TestExportUnsupportedType(t *testing.T) {
	d := sample(t)
	require.NoError(t, d.AddComponent(diagram.NewComponent("odd", "quantum_link", nil), ""))

	res, err := newExporter(DefaultOptions()).Export(d)
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "unsupported component type: quantum_link")
}

func TestExportCycle(t *testing.T) {
	d := sample(t)
	_, err := d.AddRelationship("logs", "web", diagram.DependsOn, "")
	require.NoError(t, err)

	res, err := newExporter(DefaultOptions()).Export(d)
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "dependency_error", res.Errors[len(res.Errors)-1].Type)
}

func TestExportStructuralErrors(t *testing.T) {
	data := []byte(`{"id":"d","name":"n","region":{"id":"r","type":"region","attributes":{}},
		"relationships":[{"id":"x","sourceId":"r","targetId":"gone","type":"depends_on"}]}`)
	res, err := diagram.Unmarshal(data, handler.NewRegistry())
	require.NoError(t, err)

	out, err := newExporter(DefaultOptions()).Export(res.Document)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, ValidationErrors(res.Document), out.Errors)
	assert.Equal(t, "schema_error", out.Errors[0].Type)
}

func TestAddressesAreUnique(t *testing.T) {
	d := diagram.New("dupes")
	require.NoError(t, d.AddComponent(diagram.NewComponent("a", handler.TypeS3Bucket, map[string]any{"label": "logs"}), ""))
	require.NoError(t, d.AddComponent(diagram.NewComponent("b", handler.TypeS3Bucket, map[string]any{"label": "logs"}), ""))
	require.NoError(t, d.AddComponent(diagram.NewComponent("c", handler.TypeResource, map[string]any{"label": "logs", handler.AttrTFType: "aws_sqs_queue"}), ""))

	refs := Addresses(d)
	assert.Equal(t, "aws_s3_bucket.logs", refs["a"])
	assert.Equal(t, "aws_s3_bucket.logs_b", refs["b"])
	assert.Equal(t, "aws_sqs_queue.logs", refs["c"])
	assert.NotContains(t, refs, d.Region().ID())
}
