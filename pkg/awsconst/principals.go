package awsconst

// ServicePrincipals maps a service short name to the principal used in IAM trust policies.
//
//nolint:gochecknoglobals // read-only table.
var ServicePrincipals = map[string]string{
	"apigateway":           "apigateway.amazonaws.com",
	"autoscaling":          "autoscaling.amazonaws.com",
	"cloudformation":       "cloudformation.amazonaws.com",
	"cloudtrail":           "cloudtrail.amazonaws.com",
	"codebuild":            "codebuild.amazonaws.com",
	"codedeploy":           "codedeploy.amazonaws.com",
	"codepipeline":         "codepipeline.amazonaws.com",
	"dynamodb":             "dynamodb.amazonaws.com",
	"ec2":                  "ec2.amazonaws.com",
	"ecs":                  "ecs.amazonaws.com",
	"ecs-tasks":            "ecs-tasks.amazonaws.com",
	"edgelambda":           "edgelambda.amazonaws.com",
	"elasticloadbalancing": "elasticloadbalancing.amazonaws.com",
	"events":               "events.amazonaws.com",
	"firehose":             "firehose.amazonaws.com",
	"glue":                 "glue.amazonaws.com",
	"kinesis":              "kinesis.amazonaws.com",
	"lambda":               "lambda.amazonaws.com",
	"logs":                 "logs.amazonaws.com",
	"monitoring":           "monitoring.amazonaws.com",
	"rds":                  "rds.amazonaws.com",
	"s3":                   "s3.amazonaws.com",
	"sagemaker":            "sagemaker.amazonaws.com",
	"secretsmanager":       "secretsmanager.amazonaws.com",
	"sns":                  "sns.amazonaws.com",
	"sqs":                  "sqs.amazonaws.com",
	"ssm":                  "ssm.amazonaws.com",
	"states":               "states.amazonaws.com",
}
