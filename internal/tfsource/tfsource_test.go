package tfsource

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/handler"
)

var fixture = map[string]string{
	"main.tf": `
provider "aws" {
  region = "eu-west-1"
}

resource "aws_vpc" "main" {
  cidr_block         = "10.0.0.0/16"
  enable_dns_support = true
  tags = {
    Env = "prod"
  }
}
`,
	"network.tf": `
resource "aws_subnet" "public" {
  vpc_id     = aws_vpc.main.id
  cidr_block = "10.0.1.0/24"
}

resource "aws_security_group" "web" {
  name   = "web"
  vpc_id = aws_vpc.main.id

  ingress {
    from_port   = 443
    to_port     = 443
    protocol    = "tcp"
    cidr_blocks = ["0.0.0.0/0"]
  }
}
`,
	"compute.tf": `
resource "aws_instance" "app" {
  ami                    = "ami-123"
  instance_type          = "t3.micro"
  subnet_id              = aws_subnet.public.id
  vpc_security_group_ids = [aws_security_group.web.id]
}

resource "aws_s3_bucket" "logs" {
  bucket = "app-logs"
}

resource "aws_cloudwatch_log_group" "app" {
  name       = "/app/${var.env}"
  depends_on = [aws_instance.app]
}
`,
	".terraform/modules/ignored.tf": `resource "aws_vpc" "ignored" {}`,
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range fixture {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func load(t *testing.T) *Project {
	t.Helper()
	p, err := LoadWithLogger(context.Background(), writeFixture(t), quiet())
	require.NoError(t, err)
	return p
}

func TestLoad(t *testing.T) {
	p := load(t)
	assert.Equal(t, []string{"compute.tf", "main.tf", "network.tf"}, p.Files)
	assert.Equal(t, "eu-west-1", p.Region)
	assert.True(t, strings.HasPrefix(p.Source, "# compute.tf\n"))
	assert.Len(t, p.Resources, 6)

	vpc, ok := p.Resource("aws_vpc.main")
	require.True(t, ok)
	assert.Equal(t, "main.tf", vpc.File)
	assert.Equal(t, "10.0.0.0/16", vpc.Attributes["cidr_block"])
	assert.Equal(t, map[string]any{"Env": "prod"}, vpc.Attributes["tags"])

	sg, ok := p.Resource("aws_security_group.web")
	require.True(t, ok)
	assert.Equal(t, []string{"aws_vpc.main"}, sg.Refs["vpc_id"])
	ingress, ok := sg.Attributes["ingress"].([]any)
	require.True(t, ok)
	require.Len(t, ingress, 1)
	assert.Equal(t, 443.0, ingress[0].(map[string]any)["from_port"])

	app, ok := p.Resource("aws_instance.app")
	require.True(t, ok)
	assert.Equal(t, []string{"aws_subnet.public"}, app.Refs["subnet_id"])
	assert.Equal(t, []string{"aws_security_group.web"}, app.Refs["vpc_security_group_ids"])

	lg, ok := p.Resource("aws_cloudwatch_log_group.app")
	require.True(t, ok)
	assert.NotContains(t, lg.Attributes, "name", "expressions with variables are not literals")
	assert.Equal(t, []string{"aws_instance.app"}, lg.Refs["depends_on"])

	_, ok = p.Resource("aws_vpc.ignored")
	assert.False(t, ok)
}

func TestLoadEmptyFolder(t *testing.T) {
	p, err := LoadWithLogger(context.Background(), t.TempDir(), quiet())
	require.NoError(t, err)
	assert.Empty(t, p.Resources)
	assert.Empty(t, p.Files)
}

func TestLoadParseError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.tf"), []byte(`resource "aws_vpc" {`), 0o644))
	_, err := LoadWithLogger(context.Background(), root, quiet())
	assert.Error(t, err)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadWithLogger(ctx, writeFixture(t), quiet())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocument(t *testing.T) {
	p := load(t)
	d, err := p.Document("", handler.NewRegistry(), diagram.WithLogger(quiet()))
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(p.Root), d.Name())
	assert.Equal(t, "eu-west-1", diagram.GetStr(d.Region().Attributes(), diagram.AttrRegion))
	assert.Equal(t, p.Source, d.TerraformSource())
	require.NotNil(t, d.SourceFiles())
	assert.Equal(t, p.Files, d.SourceFiles().Files)

	byAddr := make(map[string]*diagram.Component)
	var order []string
	d.Walk(func(c, _ *diagram.Component) bool {
		if c == d.Region() {
			return true
		}
		addr := c.Type() + "." + diagram.GetStr(c.Attributes(), handler.AttrResourceName)
		byAddr[addr] = c
		order = append(order, addr)
		return true
	})
	assert.Equal(t, []string{
		"vpc.main", "subnet.public", "ec2_instance.app", "security_group.web",
		"s3_bucket.logs", "resource.app",
	}, order)

	parentOf := func(addr string) string {
		p, ok := d.ParentOf(byAddr[addr].ID())
		require.True(t, ok)
		return p.ID()
	}
	assert.Equal(t, d.Region().ID(), parentOf("vpc.main"))
	assert.Equal(t, byAddr["vpc.main"].ID(), parentOf("subnet.public"))
	assert.Equal(t, byAddr["vpc.main"].ID(), parentOf("security_group.web"))
	assert.Equal(t, byAddr["subnet.public"].ID(), parentOf("ec2_instance.app"), "instance sits in its subnet")
	assert.Equal(t, d.Region().ID(), parentOf("s3_bucket.logs"))

	logGroup := byAddr["resource.app"]
	assert.Equal(t, "aws_cloudwatch_log_group", diagram.GetStr(logGroup.Attributes(), handler.AttrTFType))
	assert.Equal(t, "compute.tf", diagram.GetStr(logGroup.Attributes(), handler.AttrSourceFile))

	rels := d.Relationships()
	require.Len(t, rels, 2)
	sg := findByType(t, d, handler.TypeSecurityGroup)
	app := findByType(t, d, handler.TypeEC2Instance)
	assert.Equal(t, diagram.ConnectsTo, rels[0].Type)
	assert.Equal(t, sg.ID(), rels[0].SourceID)
	assert.Equal(t, app.ID(), rels[0].TargetID)
	assert.Equal(t, "vpc_security_group_ids", rels[0].Label)

	assert.Equal(t, diagram.DependsOn, rels[1].Type)
	assert.Equal(t, logGroup.ID(), rels[1].SourceID)
	assert.Equal(t, app.ID(), rels[1].TargetID)
	assert.Equal(t, "depends_on", rels[1].Label)

	assert.Empty(t, diagram.Validate(d))
}

func findByType(t *testing.T, d *diagram.Document, typ string) *diagram.Component {
	t.Helper()
	for _, c := range d.Components() {
		if c.Type() == typ {
			return c
		}
	}
	t.Fatalf("no component of type %s", typ)
	return nil
}

func TestDocumentRDSLinks(t *testing.T) {
	root := t.TempDir()
	src := `
resource "aws_vpc" "main" {
  cidr_block = "10.0.0.0/16"
}

resource "aws_subnet" "a" {
  vpc_id     = aws_vpc.main.id
  cidr_block = "10.0.1.0/24"
}

resource "aws_db_subnet_group" "db" {
  name       = "db"
  subnet_ids = [aws_subnet.a.id]
}

resource "aws_db_instance" "db" {
  engine               = "postgres"
  instance_class       = "db.t3.micro"
  allocated_storage    = 20
  db_subnet_group_name = aws_db_subnet_group.db.name
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "db.tf"), []byte(src), 0o644))
	p, err := LoadWithLogger(context.Background(), root, quiet())
	require.NoError(t, err)
	d, err := p.Document("db", handler.NewRegistry(), diagram.WithLogger(quiet()))
	require.NoError(t, err)

	group := findByType(t, d, handler.TypeDBSubnetGroup)
	db := findByType(t, d, handler.TypeRDSInstance)
	subnet := findByType(t, d, handler.TypeSubnet)

	var types []diagram.RelationshipType
	for _, r := range d.RelationshipsWithSource(group.ID()) {
		types = append(types, r.Type)
		switch r.Type {
		case diagram.Contains:
			assert.Equal(t, db.ID(), r.TargetID)
		case diagram.DependsOn:
			assert.Equal(t, subnet.ID(), r.TargetID)
		}
	}
	assert.ElementsMatch(t, []diagram.RelationshipType{diagram.DependsOn, diagram.Contains}, types)
}

func TestResolverDependentFiles(t *testing.T) {
	p := load(t)
	r := NewResolver(p, time.Minute)

	assert.Equal(t, []string{filepath.Join(p.Root, "main.tf"), filepath.Join(p.Root, "network.tf")}, r.DependentFiles("compute.tf"))
	assert.Equal(t, []string{filepath.Join(p.Root, "main.tf")}, r.DependentFiles(filepath.Join(p.Root, "network.tf")))
	assert.Nil(t, r.DependentFiles("main.tf"))
	assert.Nil(t, r.DependentFiles("unknown.tf"))
}

func TestResolverCachesUntilInvalidated(t *testing.T) {
	p := load(t)
	r := NewResolver(p, 0)

	first := r.DependentFiles("network.tf")
	require.Len(t, first, 1)
	first[0] = "mutated"
	assert.Equal(t, []string{filepath.Join(p.Root, "main.tf")}, r.DependentFiles("network.tf"), "callers get a copy")

	p.Resources = append(p.Resources, &Resource{
		Type: "aws_s3_bucket", Name: "extra", File: "main.tf",
		Refs: map[string][]string{"bucket": {"aws_instance.app"}},
	})
	assert.Nil(t, r.DependentFiles("main.tf"), "cached result")

	r.Invalidate()
	assert.Equal(t, []string{filepath.Join(p.Root, "compute.tf"), filepath.Join(p.Root, "network.tf")}, r.DependentFiles("main.tf"))
}
