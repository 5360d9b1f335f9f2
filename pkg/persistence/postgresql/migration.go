package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				category VARCHAR(50) NOT NULL
					CHECK (category IN ('training_request', 'course_enrollment', 'certification', 'expense_approval')),
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'active', 'inactive')),
				nodes JSONB NOT NULL DEFAULT '[]',
				edges JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_category ON workflows(category);
			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
		`,
		2: `
			CREATE TABLE workflow_instances (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				status VARCHAR(50) NOT NULL
					CHECK (status IN ('pending', 'running', 'completed', 'rejected', 'failed')),
				entity_type VARCHAR(255) NOT NULL,
				entity_id VARCHAR(255) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_workflow_instances_workflow_id ON workflow_instances(workflow_id, created_at DESC);
			CREATE INDEX idx_workflow_instances_entity ON workflow_instances(entity_type, entity_id);
		`,
	}
}
