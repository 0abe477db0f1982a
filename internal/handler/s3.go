package handler

import (
	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/result"
	"github.com/tfdiagram/tfdiagram/internal/terraform"
	"github.com/zclconf/go-cty/cty"
)

// TypeS3Bucket is a regional bucket.
const TypeS3Bucket = "s3_bucket"

type s3Handler struct{}

func init() {
	builtin(TypeS3Bucket, "aws_s3_bucket", false, s3Handler{})
}

func (s3Handler) ResourceType() string { return TypeS3Bucket }

func (s3Handler) Validate(c *diagram.Component) ([]result.Error, []result.Warning) {
	var errs []result.Error
	var warns []result.Warning
	p := c.Attributes()
	if diagram.GetStr(p, "bucket") == "" && diagram.GetStr(p, diagram.AttrLabel) == "" {
		errs = append(errs, result.Required(c.ID(), "bucket or label", "Set attributes.bucket or attributes.label"))
	}
	if !diagram.GetBool(p, "versioning") {
		warns = append(warns, result.Advise(c.ID(), "versioning is disabled", "Set attributes.versioning to true"))
	}
	return errs, warns
}

func (s3Handler) GenerateHCL(c *diagram.Component, d *diagram.Document, refs RefMap) ([]byte, error) {
	block := terraform.ResourceBlock("aws_s3_bucket", selfName(c, refs))
	body := block.Body()

	p := c.Attributes()
	bucket := diagram.GetStr(p, "bucket")
	if bucket == "" {
		bucket = diagram.GetStr(p, diagram.AttrLabel)
	}
	terraform.SetAttributeStr(body, "bucket", bucket)
	if diagram.GetBool(p, "force_destroy") {
		terraform.SetAttributeBool(body, "force_destroy", true)
	}
	if diagram.GetBool(p, "versioning") {
		body.AppendNewBlock("versioning", nil).Body().SetAttributeValue("enabled", cty.BoolVal(true))
	}
	terraform.SetAttributeMap(body, "tags", nameTags(c))

	return terraform.BlockToBytes(block), nil
}
